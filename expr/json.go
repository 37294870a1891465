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
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// JSON shapes:
//
//	Symbol    {"symbol": "name"}
//	Integer   3
//	Float     3.0 (non-finite values as "nan", "inf", "-inf")
//	Bool      true
//	String    "text"
//	Function  {"func": "name"} or {"func": "name", "args": [...]}
//	List      [...]
//	Dict      {"key": ..., "value": ...}

func (s Symbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol string `json:"symbol"`
	}{string(s)})
}

func (i Integer) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(i), 10), nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(string(appendNumber(nil, v)))
	}
	// exponent forms stay valid JSON numbers
	buf := appendNumber(nil, v)
	if bytes.IndexAny(buf, ".e") < 0 {
		buf = append(buf, ".0"...)
	}
	return buf, nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return strconv.AppendBool(nil, bool(b)), nil
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (f *Function) MarshalJSON() ([]byte, error) {
	if !f.Applied() {
		return json.Marshal(struct {
			Func string `json:"func"`
		}{f.Name})
	}
	return json.Marshal(struct {
		Func string `json:"func"`
		Args []Node `json:"args"`
	}{f.Name, f.Args})
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l.Elements == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Elements)
}

func (d *Dict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   Node `json:"key"`
		Value Node `json:"value"`
	}{d.Key, d.Value})
}
