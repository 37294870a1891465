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

// Package qconv converts the bracketed parse trees
// printed by the q engine's var2string into
// readable nested calls or flattened statements.
//
// See packages expr, expr/qparse, and flatten
// for the individual stages.
package qconv

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/SnellerInc/qconv/expr"
	"github.com/SnellerInc/qconv/expr/qparse"
	"github.com/SnellerInc/qconv/flatten"
)

var (
	// ErrInvalidUTF8 is returned for
	// input that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("qconv: input is not valid UTF-8")
	// ErrUnknownFormat is returned for
	// an unrecognized output format.
	ErrUnknownFormat = errors.New("qconv: unknown output format")
)

// Format is an output format.
type Format int

const (
	// FormatCalls is the nested-call rendering.
	FormatCalls Format = iota
	// FormatStatements is the flattened rendering.
	FormatStatements
	// FormatIon is the AST as binary Ion.
	FormatIon
	// FormatIonText is the AST as Ion text.
	FormatIonText
	// FormatJSON is the AST as JSON.
	FormatJSON

	numFormats
)

var formatNames = [numFormats]string{
	FormatCalls:      "calls",
	FormatStatements: "statements",
	FormatIon:        "ion",
	FormatIonText:    "iontext",
	FormatJSON:       "json",
}

func (f Format) valid() bool { return f >= 0 && f < numFormats }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ContentType returns the MIME type of output in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatIon:
		return "application/ion"
	case FormatIonText:
		return "text/x-ion; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for i := range formatNames {
		if formatNames[i] == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Parse validates src and parses
// the first expression it contains.
func Parse(src []byte) (expr.Node, error) {
	if !utf8.Valid(src) {
		return nil, ErrInvalidUTF8
	}
	return qparse.Parse(src)
}

// Render renders n in format f.
func Render(n expr.Node, f Format) ([]byte, error) {
	switch f {
	case FormatCalls:
		return []byte(expr.ToString(n)), nil
	case FormatStatements:
		return []byte(flatten.Flatten(n).Text()), nil
	case FormatIon:
		return expr.MarshalIon(n, false)
	case FormatIonText:
		return expr.MarshalIon(n, true)
	case FormatJSON:
		return json.Marshal(n)
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownFormat, f)
	}
}

// ToCalls parses src and returns
// its nested-call rendering.
func ToCalls(src []byte) (string, error) {
	n, err := Parse(src)
	if err != nil {
		return "", err
	}
	return expr.ToString(n), nil
}

// ToStatements parses src and returns its flattened
// rendering, ending with a "result = ..." line.
func ToStatements(src []byte) (string, error) {
	n, err := Parse(src)
	if err != nil {
		return "", err
	}
	return flatten.Flatten(n).Text(), nil
}
