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

// Package cache stores rendered conversion
// results keyed by a digest of their input.
package cache

import (
	"encoding/hex"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// Cache is an interface to store conversion results.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Store saves value under key.
	Store(key string, value []byte) error

	// Fetch loads the value stored under key.
	// It returns nil, nil if no value was found.
	Fetch(key string) ([]byte, error)
}

// Key returns the cache key for the
// conversion of src into kind.
// Keys are hex-encoded BLAKE2b-256 digests,
// so they are short enough for any backend
// and safe to use as an HTTP entity tag.
func Key(kind string, src []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

// Nop is a Cache that does not support storing
// and always fetches nothing.
type Nop struct{}

func (Nop) Store(key string, value []byte) error { return nil }

func (Nop) Fetch(key string) ([]byte, error) { return nil, nil }

// LRU is an in-process Cache holding a fixed
// number of entries, evicting the least
// recently used entry first.
type LRU struct {
	c *lru.Cache
}

// NewLRU creates an LRU holding up to entries values.
func NewLRU(entries int) (*LRU, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, err
	}
	return &LRU{c: c}, nil
}

// Store saves a copy of value.
func (l *LRU) Store(key string, value []byte) error {
	l.c.Add(key, slices.Clone(value))
	return nil
}

// Fetch returns the stored value;
// callers must not modify it.
func (l *LRU) Fetch(key string) ([]byte, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, nil
	}
	return v.([]byte), nil
}

// Len returns the number of cached entries.
func (l *LRU) Len() int { return l.c.Len() }

// Memcache is a Cache backed by memcached.
type Memcache struct {
	client     *memcache.Client
	prefix     string
	expiration int32 // see memcache.Item.Expiration
}

// NewMemcache creates a Memcache that stores items
// under prefix with the given expiration in seconds
// (0 means items do not expire).
func NewMemcache(client *memcache.Client, prefix string, expiration int) *Memcache {
	return &Memcache{
		client:     client,
		prefix:     prefix,
		expiration: int32(expiration),
	}
}

func (m *Memcache) key(key string) string {
	return m.prefix + "qconv:" + key
}

func (m *Memcache) Store(key string, value []byte) error {
	return m.client.Set(&memcache.Item{
		Key:        m.key(key),
		Value:      value,
		Expiration: m.expiration,
	})
}

func (m *Memcache) Fetch(key string) ([]byte, error) {
	item, err := m.client.Get(m.key(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return item.Value, nil
}
