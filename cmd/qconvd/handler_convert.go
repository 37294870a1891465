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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/SnellerInc/qconv"
	"github.com/SnellerInc/qconv/cache"
	"github.com/SnellerInc/qconv/compr"
	"github.com/SnellerInc/qconv/expr/qparse"

	"github.com/gorilla/mux"
)

var errUnsupportedEncoding = errors.New("unsupported Content-Encoding")

// readBody returns the request body,
// decompressed according to Content-Encoding
func (s *server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, err
	}
	switch enc := r.Header.Get("Content-Encoding"); enc {
	case "", "identity":
		return body, nil
	case "zstd", "s2":
		return compr.Decompression(enc).Decompress(body, nil, int(s.maxBody))
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedEncoding, enc)
	}
}

func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, compr.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnsupportedEncoding):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

func (s *server) convertHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := mux.Vars(r)["format"]
	if !ok {
		name = r.URL.Query().Get("format")
	}
	if name == "" {
		name = qconv.FormatCalls.String()
	}
	format, err := qconv.ParseFormat(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), bodyStatus(err))
		return
	}

	// the output depends only on format and body
	etag := strconv.Quote(cache.Key(format.String(), body))
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Encoding")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	out, err := s.conv.Convert(r.Context(), body, format)
	if err != nil {
		var perr *qparse.ParseError
		if errors.As(err, &perr) || errors.Is(err, qconv.ErrInvalidUTF8) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Printf("request %s: %s", w.Header().Get(requestIDHeader), err)
		writeInternalServerResponse(w, err)
		return
	}
	if accepts(r, "zstd") {
		out = s.zstd.Compress(out, nil)
		w.Header().Set("Content-Encoding", "zstd")
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
