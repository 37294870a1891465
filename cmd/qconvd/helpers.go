// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Qconv-Request-ID"

func (s *server) handle(handler func(http.ResponseWriter, *http.Request), methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		// obtain the real address
		remoteAddress := r.RemoteAddr
		forwarded := false
		if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
			parts := strings.Split(forwardedFor, ",")
			remoteAddress = strings.TrimSpace(parts[len(parts)-1])
			forwarded = true
		}
		id := uuid.New().String()
		w.Header().Set(requestIDHeader, id)
		// unforwarded requests to "/"
		// are just load balancer heartbeats;
		// don't log these, as they spam the logs
		if r.URL.Path != "/" || forwarded {
			s.logger.Printf("Request %s %s %s from %s", id, r.Method, r.URL.Path, remoteAddress)
		}
		if version != "" {
			w.Header().Set("X-Qconv-Version", version)
		}
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Accept-Encoding, Content-Encoding, If-None-Match")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		for _, httpMethod := range methods {
			if r.Method == httpMethod {
				handler(w, r)
				return
			}
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeResultResponse(w http.ResponseWriter, statusCode int, v interface{}) {
	result, err := json.Marshal(v)
	if err != nil {
		panic("unable to serialize HTTP response")
	}
	w.Header().Add("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(result)))
	w.WriteHeader(statusCode)
	w.Write(result)
}

func writeInternalServerResponse(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// accepts returns true if the Accept-Encoding
// header of r lists encoding
func accepts(r *http.Request, encoding string) bool {
	for _, field := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(field), ";")
		if strings.TrimSpace(name) != encoding {
			continue
		}
		// "zstd;q=0" explicitly refuses zstd
		return strings.ReplaceAll(params, " ", "") != "q=0"
	}
	return false
}
