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
	"os"
	"path/filepath"
	"testing"

	"github.com/SnellerInc/qconv/cache"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(`
listen: 0.0.0.0:9090
maxBodyBytes: 4096
redactLogs: true
compression: zstd-better
memcache:
  servers: ["127.0.0.1:11211", "127.0.0.1:11212"]
  expiration: 3600
  prefix: "staging:"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "0.0.0.0:9090" || cfg.MaxBodyBytes != 4096 || !cfg.RedactLogs {
		t.Errorf("unexpected config %+v", cfg)
	}
	if z := cfg.compressor(); z == nil || z.Name() != "zstd" || cfg.Compression != "zstd-better" {
		t.Errorf("unexpected compressor %v", z)
	}
	if len(cfg.Memcache.Servers) != 2 || cfg.Memcache.Expiration != 3600 || cfg.Memcache.Prefix != "staging:" {
		t.Errorf("unexpected memcache config %+v", cfg.Memcache)
	}
	c, err := cfg.cache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.Memcache); !ok {
		t.Errorf("cache is %T", c)
	}

	// defaults fill in missing fields
	cfg, err = parseConfig([]byte("cacheEntries: 100\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != defaultListen || cfg.MaxBodyBytes != defaultMaxBodyBytes || cfg.Compression != defaultCompression {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	c, err = cfg.cache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.LRU); !ok {
		t.Errorf("cache is %T", c)
	}

	for _, bad := range []string{
		"maxBodyBytes: -1\n",
		"cacheEntries: -5\n",
		"memcache: {expiration: -1}\n",
		"listen: [1, 2]\n",
		"unknownField: true\n",
		"compression: s2\n",
		"compression: gzip\n",
	} {
		if _, err := parseConfig([]byte(bad)); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	c, err := cfg.cache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.Nop); !ok {
		t.Errorf("default cache is %T", c)
	}

	p := filepath.Join(t.TempDir(), "qconvd.yaml")
	if err := os.WriteFile(p, []byte("listen: localhost:1234\ntrace: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "localhost:1234" || !cfg.Trace {
		t.Errorf("unexpected config %+v", cfg)
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
