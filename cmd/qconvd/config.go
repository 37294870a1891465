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
	"fmt"
	"os"

	"github.com/SnellerInc/qconv/cache"
	"github.com/SnellerInc/qconv/compr"

	"github.com/bradfitz/gomemcache/memcache"
	"sigs.k8s.io/yaml"
)

const (
	defaultListen       = "127.0.0.1:8000"
	defaultMaxBodyBytes = 1 << 20
	defaultCompression  = "zstd"
)

// config is the daemon configuration file.
// The file is YAML; field names follow the json tags.
type config struct {
	Listen       string `json:"listen,omitempty"`
	MaxBodyBytes int64  `json:"maxBodyBytes,omitempty"`
	RedactLogs   bool   `json:"redactLogs,omitempty"`
	Trace        bool   `json:"trace,omitempty"`
	// Compression is the zstd level used for
	// responses to clients that accept zstd:
	// either "zstd" or "zstd-better".
	Compression string `json:"compression,omitempty"`
	// CacheEntries sizes the in-process result cache
	// when no memcache servers are configured.
	CacheEntries int `json:"cacheEntries,omitempty"`
	Memcache     struct {
		Servers    []string `json:"servers,omitempty"`
		Expiration int      `json:"expiration,omitempty"` // seconds
		Prefix     string   `json:"prefix,omitempty"`
	} `json:"memcache,omitempty"`
}

func defaultConfig() *config {
	return &config{
		Listen:       defaultListen,
		MaxBodyBytes: defaultMaxBodyBytes,
		Compression:  defaultCompression,
	}
}

func parseConfig(buf []byte) (*config, error) {
	c := defaultConfig()
	if err := yaml.UnmarshalStrict(buf, c); err != nil {
		return nil, err
	}
	switch {
	case c.MaxBodyBytes <= 0:
		return nil, fmt.Errorf("field 'maxBodyBytes': must be positive")
	case c.CacheEntries < 0:
		return nil, fmt.Errorf("field 'cacheEntries': cannot be negative")
	case c.Memcache.Expiration < 0:
		return nil, fmt.Errorf("field 'memcache.expiration': cannot be negative")
	case c.Compression != "zstd" && c.Compression != "zstd-better":
		return nil, fmt.Errorf("field 'compression': unsupported value %q", c.Compression)
	}
	return c, nil
}

// loadConfig reads the configuration from path;
// an empty path yields the defaults.
func loadConfig(path string) (*config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := parseConfig(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// cache returns the result cache selected by c
func (c *config) cache() (cache.Cache, error) {
	if len(c.Memcache.Servers) > 0 {
		client := memcache.New(c.Memcache.Servers...)
		return cache.NewMemcache(client, c.Memcache.Prefix, c.Memcache.Expiration), nil
	}
	if c.CacheEntries > 0 {
		return cache.NewLRU(c.CacheEntries)
	}
	return cache.Nop{}, nil
}

// compressor returns the response compressor
// selected by c; responses are always
// labeled as Content-Encoding: zstd
func (c *config) compressor() compr.Compressor {
	if c.Compression == "" {
		return compr.Compression(defaultCompression)
	}
	return compr.Compression(c.Compression)
}
