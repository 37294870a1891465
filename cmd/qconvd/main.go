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

// Command qconvd serves q parse tree
// conversions over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/SnellerInc/qconv"
)

var version = "development"

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "-version":
			v, ok := qconv.Version()
			if ok {
				fmt.Println(v)
			} else {
				fmt.Println("version not available, please check -build")
			}
			return
		case "-build":
			bi, ok := debug.ReadBuildInfo()
			if ok {
				fmt.Print(bi)
			} else {
				fmt.Println("build info not available")
			}
			return
		}
	}

	ver, ok := qconv.Version()
	if ok {
		version = ver
	}
	runDaemon(args)
}

func runDaemon(args []string) {
	daemonCmd := flag.NewFlagSet("qconvd", flag.ExitOnError)
	configFile := daemonCmd.String("c", "", "configuration file (YAML)")
	daemonEndpoint := daemonCmd.String("e", "", "endpoint to listen on (overrides the configuration file)")

	if daemonCmd.Parse(args) != nil {
		os.Exit(1)
	}
	logger := log.New(os.Stderr, "", log.Lshortfile)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Fatalf("unable to load configuration: %s", err)
	}
	if *daemonEndpoint != "" {
		cfg.Listen = *daemonEndpoint
	}
	server, err := newServer(logger, cfg)
	if err != nil {
		logger.Fatal(err)
	}
	httpl, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		server.logger.Fatal(err)
	}
	if cfg.RedactLogs {
		server.logger.Println("log redaction enabled")
	}
	go func() {
		server.logger.Printf("qconv daemon %s listening on %v\n", version, httpl.Addr())
		err := server.Serve(httpl)
		if err != nil && err != http.ErrServerClosed {
			server.logger.Fatal(err)
		}
	}()

	c := make(chan os.Signal, 1)

	// We'll accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+/) will not be caught
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal
	<-c

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Doesn't block if no connections, but will otherwise wait until the timeout deadline
	server.Shutdown(ctx)
}
