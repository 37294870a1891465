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

package qconv

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SnellerInc/qconv/cache"
	"github.com/SnellerInc/qconv/expr"
)

// Converter runs conversions with optional
// result caching and logging. A Converter is
// safe for concurrent use once configured.
type Converter struct {
	// Cache, if non-nil, holds rendered
	// results keyed by cache.Key.
	// Cache errors are logged and
	// never fail a conversion.
	Cache cache.Cache
	// Logger, if non-nil, receives
	// cache errors and traces.
	Logger *log.Logger
	// Trace logs every conversion
	// along with its duration.
	Trace bool
	// Redact causes traced expressions
	// to be logged with expr.ToRedacted.
	Redact bool
}

func (c *Converter) logf(f string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(f, args...)
	}
}

func (c *Converter) text(n expr.Node) string {
	if c.Redact {
		return expr.ToRedacted(n)
	}
	return expr.ToString(n)
}

// Convert parses src and renders it in format f.
// Parse errors are returned as *qparse.ParseError.
func (c *Converter) Convert(ctx context.Context, src []byte, f Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.valid() {
		return nil, fmt.Errorf("%w %s", ErrUnknownFormat, f)
	}
	var key string
	if c.Cache != nil {
		key = cache.Key(f.String(), src)
		out, err := c.Cache.Fetch(key)
		if err != nil {
			c.logf("cache fetch %s: %s", key, err)
		} else if out != nil {
			return out, nil
		}
	}
	start := time.Now()
	n, err := Parse(src)
	if err != nil {
		if c.Trace {
			c.logf("parse error: %s", err)
		}
		return nil, err
	}
	out, err := Render(n, f)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", f, err)
	}
	if c.Trace {
		c.logf("%s %s (%s)", f, c.text(n), time.Since(start))
	}
	if c.Cache != nil {
		if err := c.Cache.Store(key, out); err != nil {
			c.logf("cache store %s: %s", key, err)
		}
	}
	return out, nil
}
