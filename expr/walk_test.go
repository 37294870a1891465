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
	"testing"

	"golang.org/x/exp/slices"
)

type symbolCollector struct {
	names []string
	depth int
	max   int
}

func (s *symbolCollector) Visit(n Node) Visitor {
	if n == nil {
		s.depth--
		return nil
	}
	if sym, ok := n.(Symbol); ok {
		s.names = append(s.names, string(sym))
	}
	s.depth++
	if s.depth > s.max {
		s.max = s.depth
	}
	return s
}

// renamer prefixes every symbol
type renamer string

func (r renamer) Walk(Node) Rewriter { return r }

func (r renamer) Rewrite(n Node) Node {
	if s, ok := n.(Symbol); ok {
		return Symbol(string(r) + string(s))
	}
	return n
}

func testTree() Node {
	return Call("lj",
		Symbol("a"),
		Call("!", Integer(2),
			&Dict{
				Key:   &List{Elements: []Node{Symbol("s"), Symbol("t")}},
				Value: &List{Elements: []Node{Call("min", Symbol("s")), Call("maxs", Symbol("t"))}},
			}))
}

func TestWalk(t *testing.T) {
	var sc symbolCollector
	Walk(&sc, testTree())
	want := []string{"a", "s", "t", "s", "t"}
	if !slices.Equal(sc.names, want) {
		t.Errorf("got %v, want %v", sc.names, want)
	}
	if sc.depth != 0 {
		t.Errorf("unbalanced Visit(nil) calls: depth %d", sc.depth)
	}
	if sc.max != 6 {
		t.Errorf("max depth %d, want 6", sc.max)
	}
}

func TestRewrite(t *testing.T) {
	in := testTree()
	before := ToString(in)
	out := Rewrite(renamer("x"), in)
	if got := ToString(in); got != before {
		t.Errorf("input modified: %q -> %q", before, got)
	}
	want := "lj(`xa, bang(2, {[`xs, `xt]: [min(`xs), maxs(`xt)]}))"
	if got := ToString(out); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// applied-ness survives rewriting
	ref := Rewrite(renamer("x"), &Function{Name: "f"}).(*Function)
	if ref.Applied() {
		t.Error("bare reference became a call")
	}
	call := Rewrite(renamer("x"), Call("f")).(*Function)
	if !call.Applied() {
		t.Error("empty call became a bare reference")
	}
}
