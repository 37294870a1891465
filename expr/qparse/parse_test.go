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

package qparse

import (
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/SnellerInc/qconv/expr"
)

const scenarioB = "[Func[lj], Symbol[a], [Func[!], Long[2], [Func[?], Symbol[c], [], Bool[0], " +
	"{LSymbol[s,t], [[Func[min], Symbol[s]], [Func[maxs], Symbol[t]]]}]]]"

func TestParse(t *testing.T) {
	testcases := []struct {
		in   string
		want expr.Node
		text string
	}{
		{
			in:   "[Func[min]]",
			want: expr.Call("min"),
			text: "min()",
		},
		{
			in:   "Func[min]",
			want: &expr.Function{Name: "min"},
			text: "min()",
		},
		{
			in: scenarioB,
			want: expr.Call("lj",
				expr.Symbol("a"),
				expr.Call("!",
					expr.Integer(2),
					expr.Call("?",
						expr.Symbol("c"),
						&expr.List{},
						expr.Bool(false),
						&expr.Dict{
							Key: &expr.List{Elements: []expr.Node{expr.Symbol("s"), expr.Symbol("t")}},
							Value: &expr.List{Elements: []expr.Node{
								expr.Call("min", expr.Symbol("s")),
								expr.Call("maxs", expr.Symbol("t")),
							}},
						},
					),
				),
			),
			text: "lj(`a, bang(2, query(`c, [], False, {[`s, `t]: [min(`s), maxs(`t)]})))",
		},
		{in: "Foo", want: expr.String("Foo"), text: "Foo"},
		{in: "foo", want: expr.String("foo"), text: "foo"},
		{in: "Float[3]", want: expr.Float(3), text: "3.0"},
		{in: "Real[ 0.25 ]", want: expr.Float(0.25), text: "0.25"},
		{in: "Int[-7]", want: expr.Integer(-7), text: "-7"},
		{in: "Long[2]", want: expr.Integer(2), text: "2"},
		{in: "Bool[1]", want: expr.Bool(true), text: "True"},
		{in: "Bool[0]", want: expr.Bool(false), text: "False"},
		{in: "Bool[yes]", want: expr.Bool(false), text: "False"},
		{in: "42", want: expr.Integer(42), text: "42"},
		{in: "007", want: expr.Integer(7), text: "7"},
		{in: "1.5", want: expr.Float(1.5), text: "1.5"},
		{in: "5.", want: expr.Float(5), text: "5.0"},
		{in: "1.2.3", want: expr.String("1.2.3"), text: "1.2.3"},
		{in: "-5", want: expr.String("-5"), text: "-5"},
		{in: "Symbol[a b]", want: expr.Symbol("a b"), text: "`a b"},
		{in: "Symbol[:data/t]", want: expr.Symbol(":data/t"), text: "`:data/t"},
		{in: "Symbol[]", want: expr.Symbol(""), text: "`"},
		{
			in:   "LSymbol[s, t]",
			want: &expr.List{Elements: []expr.Node{expr.Symbol("s"), expr.Symbol("t")}},
			text: "[`s, `t]",
		},
		{in: "LSymbol[]", want: &expr.List{}, text: "[]"},
		{
			in:   "LSymbol[a,,b]",
			want: &expr.List{Elements: []expr.Node{expr.Symbol("a"), expr.Symbol("b")}},
			text: "[`a, `b]",
		},
		{
			in:   "LSymbol[s t]",
			want: &expr.List{Elements: []expr.Node{expr.Symbol("s"), expr.Symbol("t")}},
			text: "[`s, `t]",
		},
		{
			in:   "LSymbol[a,]",
			want: &expr.List{Elements: []expr.Node{expr.Symbol("a")}},
			text: "[`a]",
		},
		{in: "LSymbol[ , ]", want: &expr.List{}, text: "[]"},
		{
			in:   "LSymbol[x:y]",
			want: &expr.List{Elements: []expr.Node{expr.Symbol("x"), expr.Symbol(":"), expr.Symbol("y")}},
			text: "[`x, `:, `y]",
		},
		{in: ":", want: expr.String(":"), text: ":"},
		{
			in:   "[Func[f], :]",
			want: expr.Call("f", expr.String(":")),
			text: "f(:)",
		},
		{
			in:   "[Func[!], 2, ::]",
			want: expr.Call("!", expr.Integer(2), expr.String(":"), expr.String(":")),
			text: "bang(2, :, :)",
		},
		{in: "Float[1e16]", want: expr.Float(1e16), text: "1e+16.0"},
		{in: "Float[1e-5]", want: expr.Float(1e-5), text: "1e-05.0"},
		{in: "Foo[a, b]", want: expr.String("Foo[a, b]"), text: "Foo[a, b]"},
		{in: "Foo[[x], y]", want: expr.String("Foo[[x], y]"), text: "Foo[[x], y]"},
		{
			in:   "[Func[::], x, y]",
			want: expr.Call("::", expr.String("x"), expr.String("y")),
			text: "colon_colon(x, y)",
		},
		{
			in:   "[Func[,], 1]",
			want: expr.Call(",", expr.Integer(1)),
			text: ",(1)",
		},
		{
			in:   "[Func[_], 1, 2]",
			want: expr.Call("_", expr.Integer(1), expr.Integer(2)),
			text: "underscore(1, 2)",
		},
		{
			in:   "[Func[f], [Func[g]]]",
			want: expr.Call("f", expr.Call("g")),
			text: "f(g())",
		},
		{
			// an applied call at the head is data, not a call
			in: "[[Func[f]], x]",
			want: &expr.List{Elements: []expr.Node{
				expr.Call("f"),
				expr.String("x"),
			}},
			text: "[f(), x]",
		},
		{
			in:   "[1,,2,]",
			want: &expr.List{Elements: []expr.Node{expr.Integer(1), expr.Integer(2)}},
			text: "[1, 2]",
		},
		{
			in:   "{a, [b]}",
			want: &expr.Dict{Key: expr.String("a"), Value: &expr.List{Elements: []expr.Node{expr.String("b")}}},
			text: "{a: [b]}",
		},
	}
	for i := range testcases {
		in := testcases[i].in
		got, err := Parse([]byte(in))
		if err != nil {
			t.Errorf("case %d: parsing %q: %s", i, in, err)
			continue
		}
		if !expr.Equal(got, testcases[i].want) {
			t.Errorf("case %d: parsing %q: got %s, want %s", i, in, expr.ToString(got), expr.ToString(testcases[i].want))
		}
		if text := expr.ToString(got); text != testcases[i].text {
			t.Errorf("case %d: %q rendered as %q, want %q", i, in, text, testcases[i].text)
		}
	}
}

func TestParseErrors(t *testing.T) {
	testcases := []struct {
		in  string
		pos int
		is  error // expected wrapped error, if any
	}{
		{in: "", pos: 0, is: io.ErrUnexpectedEOF},
		{in: "   ", pos: 3, is: io.ErrUnexpectedEOF},
		{in: "[a, b", pos: 5, is: io.ErrUnexpectedEOF},
		{in: "{a, b", pos: 5, is: io.ErrUnexpectedEOF},
		{in: "{a", pos: 2, is: io.ErrUnexpectedEOF},
		{in: "Symbol[a", pos: 8, is: io.ErrUnexpectedEOF},
		{in: "Foo[[a]", pos: 7, is: io.ErrUnexpectedEOF},
		{in: "{a b}", pos: 3},
		{in: "{a, b c}", pos: 6},
		{in: "(a)", pos: 0},
		{in: "[a, (b)]", pos: 4},
		{in: "]", pos: 0},
		{in: "}", pos: 0},
		{in: "Func[]", pos: 0},
		{in: "Long[x]", pos: 0, is: strconv.ErrSyntax},
		{in: "[1, Float[abc]]", pos: 4, is: strconv.ErrSyntax},
		{in: "99999999999999999999", pos: 0, is: strconv.ErrRange},
	}
	for _, tc := range testcases {
		n, err := Parse([]byte(tc.in))
		if err == nil {
			t.Errorf("parsing %q: expected an error; got %s", tc.in, expr.ToString(n))
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("parsing %q: error %T is not a *ParseError", tc.in, err)
			continue
		}
		if perr.Pos != tc.pos {
			t.Errorf("parsing %q: error %q at position %d, want %d", tc.in, err, perr.Pos, tc.pos)
		}
		if tc.is != nil && !errors.Is(err, tc.is) {
			t.Errorf("parsing %q: error %q does not wrap %q", tc.in, err, tc.is)
		}
	}
}

func TestParseErrorText(t *testing.T) {
	_, err := Parse([]byte("{a b}"))
	if err == nil {
		t.Fatal("expected an error")
	}
	want := "at position 3: expected ',' in dict, got \"b\""
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	_, err = Parse([]byte("[a"))
	if err == nil {
		t.Fatal("expected an error")
	}
	want = "at position 2: expected ']' to close '[' at position 0, got end of input: unexpected EOF"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestParserRest(t *testing.T) {
	p := NewParser([]byte("[Func[f], 1] trailing [x]"))
	n, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if got := expr.ToString(n); got != "f(1)" {
		t.Errorf("got %q", got)
	}
	if p.Rest() != 4 {
		t.Errorf("%d tokens remaining, want 4", p.Rest())
	}
	// the remaining input parses as further expressions
	n, err = p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if n != expr.String("trailing") {
		t.Errorf("got %s", expr.ToString(n))
	}
	n, err = p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if got := expr.ToString(n); got != "[x]" {
		t.Errorf("got %q", got)
	}
	if p.Rest() != 0 {
		t.Errorf("%d tokens remaining", p.Rest())
	}
	_, err = p.Parse()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("parsing past the end: %v", err)
	}
}

// parsing must not depend on whitespace between tokens
func TestParseSpacing(t *testing.T) {
	compact := "[Func[lj],Symbol[a],[Func[!],Long[2],[Func[?],Symbol[c],[],Bool[0]," +
		"{LSymbol[s,t],[[Func[min],Symbol[s]],[Func[maxs],Symbol[t]]]}]]]"
	a, err := Parse([]byte(compact))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(scenarioB))
	if err != nil {
		t.Fatal(err)
	}
	if !expr.Equal(a, b) {
		t.Errorf("%s != %s", expr.ToString(a), expr.ToString(b))
	}
}

func FuzzParse(f *testing.F) {
	f.Add([]byte(scenarioB))
	f.Add([]byte("[Func[::], Foo[a, [b]], {x, 1.5}]"))
	f.Fuzz(func(t *testing.T, src []byte) {
		n, err := Parse(src)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			return
		}
		expr.ToString(n)
	})
}
