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
	"context"
	"log"
	"net"
	"net/http"

	"github.com/SnellerInc/qconv"
	"github.com/SnellerInc/qconv/compr"

	"github.com/gorilla/mux"
)

type server struct {
	logger *log.Logger
	conv   *qconv.Converter

	// request bodies are limited to
	// this many bytes, both before
	// and after decompression
	maxBody int64

	// compressor for responses to clients
	// that accept zstd
	zstd compr.Compressor

	// when started, the http server
	srv http.Server
	// when started, the address of the http listener
	bound net.Addr
}

func newServer(logger *log.Logger, cfg *config) (*server, error) {
	c, err := cfg.cache()
	if err != nil {
		return nil, err
	}
	return &server{
		logger: logger,
		conv: &qconv.Converter{
			Cache:  c,
			Logger: logger,
			Trace:  cfg.Trace,
			Redact: cfg.RedactLogs,
		},
		maxBody: cfg.MaxBodyBytes,
		zstd:    cfg.compressor(),
	}, nil
}

func (s *server) Close() error {
	return s.srv.Close()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *server) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handle(s.versionHandler, http.MethodHead, http.MethodGet))
	r.HandleFunc("/ping", s.handle(s.pingHandler, http.MethodGet))
	r.HandleFunc("/glyphs", s.handle(s.glyphsHandler, http.MethodGet))
	r.HandleFunc("/convert", s.handle(s.convertHandler, http.MethodPost))
	r.HandleFunc("/convert/{format}", s.handle(s.convertHandler, http.MethodPost))
	return r
}

func (s *server) Serve(httpsock net.Listener) error {
	s.bound = httpsock.Addr()
	s.srv.Handler = s.handler()
	return s.srv.Serve(httpsock)
}
