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

package expr

import (
	"golang.org/x/exp/maps"
)

// glyphs maps the engine's operator glyphs
// to the words used in their place when a
// call is rendered; every renderer shares it.
var glyphs = map[string]string{
	"@":  "at",
	"!":  "bang",
	":":  "colon",
	"::": "colon_colon",
	"-":  "dash",
	".":  "dot",
	"$":  "dollar",
	"#":  "hash",
	"?":  "query",
	"_":  "underscore",
}

// Mnemonic returns the identifier that
// stands in for the function name in a
// rendered call. Names that are not
// glyphs are returned unchanged.
func Mnemonic(name string) string {
	if m, ok := glyphs[name]; ok {
		return m
	}
	return name
}

// Glyphs returns a copy of the glyph substitution table.
func Glyphs() map[string]string {
	return maps.Clone(glyphs)
}
