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
	"encoding/json"
	"math"
	"testing"
)

func TestJSON(t *testing.T) {
	testcases := []struct {
		in   Node
		want string
	}{
		{Symbol("a"), `{"symbol":"a"}`},
		{Integer(2), `2`},
		{Float(3), `3.0`},
		{Float(math.NaN()), `"nan"`},
		{Float(1e16), `1e+16`},
		{Float(math.Inf(-1)), `"-inf"`},
		{Bool(true), `true`},
		{String("x y"), `"x y"`},
		{&List{}, `[]`},
		{&Function{Name: "min"}, `{"func":"min"}`},
		{Call("min"), `{"func":"min","args":[]}`},
		{
			testTree(),
			`{"func":"lj","args":[{"symbol":"a"},{"func":"!","args":[2,{"key":[{"symbol":"s"},{"symbol":"t"}],"value":[{"func":"min","args":[{"symbol":"s"}]},{"func":"maxs","args":[{"symbol":"t"}]}]}]}]}`,
		},
	}
	for i := range testcases {
		buf, err := json.Marshal(testcases[i].in)
		if err != nil {
			t.Errorf("case %d: %s", i, err)
			continue
		}
		if string(buf) != testcases[i].want {
			t.Errorf("case %d: got %s, want %s", i, buf, testcases[i].want)
		}
	}
}
