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
	"math"
	"strconv"
	"strings"

	"github.com/amazon-ion/ion-go/ion"

	"golang.org/x/exp/slices"
)

// Visitor is an interface that must
// be satisfied by the argument to Visit.
//
// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter accepts a Node and returns
// a new node (or just its argument)
type Rewriter interface {
	// Rewrite is applied to nodes
	// in depth-first order, and each
	// node is re-written to use the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal
	// and the returned Rewriter is used for
	// all the children of Node.
	// If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order.
// Composite nodes are copied rather than modified in place,
// so the input tree is left untouched.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	n = r.Rewrite(n)
	return n
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// ToString returns the nested-call
// rendering of this AST node and its
// children, e.g. lj(`a, bang(2, `t))
func ToString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	var dst strings.Builder
	n.text(&dst, false)
	return dst.String()
}

// ToRedacted returns the same rendering
// as ToString, but with all literal payloads
// (symbol names, numbers, and strings)
// replaced with random (deterministic) values.
// Function names and structure are preserved.
func ToRedacted(n Node) string {
	if n == nil {
		return "<nil>"
	}
	var dst strings.Builder
	n.text(&dst, true)
	return dst.String()
}

// Node is an expression AST node.
type Node interface {
	// text should write the textual representation
	// of this node to dst, and should redact itself
	// if it is a literal and redact is true
	text(dst *strings.Builder, redact bool)

	// Equals returns whether this node
	// is syntactically equivalent to another node.
	Equals(Node) bool

	encode(w ion.Writer) error

	walk(Visitor)
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Literal is a Node without children.
type Literal interface {
	Node
	literal()
}

var (
	// these are all the Literal types
	_ Literal = Symbol("")
	_ Literal = Integer(0)
	_ Literal = Float(0)
	_ Literal = Bool(false)
	_ Literal = String("")
)

// IsLiteral returns true if node is a literal value
func IsLiteral(e Node) bool {
	_, ok := e.(Literal)
	return ok
}

// Symbol is a named atom; it renders
// in the engine's symbol notation (`name).
type Symbol string

func (s Symbol) text(dst *strings.Builder, redact bool) {
	v := string(s)
	if redact {
		v = redactString(v)
	}
	dst.WriteByte('`')
	dst.WriteString(v)
}

func (s Symbol) Equals(e Node) bool {
	es, ok := e.(Symbol)
	return ok && s == es
}

func (s Symbol) walk(v Visitor) {}
func (s Symbol) literal()        {}

// Integer is a literal integer AST node
type Integer int64

func (i Integer) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := int64(i)
	if redact {
		v = redactInt(v)
	}
	dst.Write(strconv.AppendInt(buf[:0], v, 10))
}

func (i Integer) Equals(e Node) bool {
	ei, ok := e.(Integer)
	return ok && i == ei
}

func (i Integer) walk(v Visitor) {}
func (i Integer) literal()        {}

// Float is a literal float AST node
type Float float64

func (f Float) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := float64(f)
	if redact {
		v = redactFloat(v)
	}
	dst.Write(appendFloat(buf[:0], v))
}

// Floats compare by bit pattern, so that
// NaN equals itself and -0 differs from 0
// (the two render differently).
func (f Float) Equals(e Node) bool {
	ef, ok := e.(Float)
	return ok && math.Float64bits(float64(f)) == math.Float64bits(float64(ef))
}

func (f Float) walk(v Visitor) {}
func (f Float) literal()        {}

// appendFloat appends the text of f followed
// by ".0" whenever that text has no decimal
// point, so 1e16 renders as 1e+16.0 and
// +Inf as inf.0.
func appendFloat(dst []byte, f float64) []byte {
	start := len(dst)
	dst = appendNumber(dst, f)
	if bytes.IndexByte(dst[start:], '.') < 0 {
		dst = append(dst, ".0"...)
	}
	return dst
}

// appendNumber appends the shortest text that
// round-trips f: plain notation inside [1e-4, 1e16),
// exponent notation outside it.
func appendNumber(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "nan"...)
	case math.IsInf(f, 1):
		return append(dst, "inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		return strconv.AppendFloat(dst, f, 'f', -1, 64)
	}
	return strconv.AppendFloat(dst, f, 'e', -1, 64)
}

// Bool is a literal boolean AST node
type Bool bool

func (b Bool) text(dst *strings.Builder, redact bool) {
	if b {
		dst.WriteString("True")
	} else {
		dst.WriteString("False")
	}
}

func (b Bool) Equals(e Node) bool {
	eb, ok := e.(Bool)
	return ok && b == eb
}

func (b Bool) walk(v Visitor) {}
func (b Bool) literal()        {}

// String is literal text. It renders verbatim
// (unquoted), which makes it the catch-all for
// operator glyphs, bare identifiers, and
// unrecognized constructors.
type String string

func (s String) text(dst *strings.Builder, redact bool) {
	v := string(s)
	if redact {
		v = redactString(v)
	}
	dst.WriteString(v)
}

func (s String) Equals(e Node) bool {
	es, ok := e.(String)
	return ok && s == es
}

func (s String) walk(v Visitor) {}
func (s String) literal()        {}

// Function is a named engine function.
//
// Args is nil for a bare reference to the
// function, which is what a lone Func[name]
// constructor produces. A call with no
// arguments has a non-nil, empty Args.
type Function struct {
	Name string
	Args []Node
}

// Call constructs an applied function.
func Call(name string, args ...Node) *Function {
	if args == nil {
		args = []Node{}
	}
	return &Function{Name: name, Args: args}
}

// Applied returns true if f is a call
// rather than a bare function reference.
func (f *Function) Applied() bool { return f.Args != nil }

func (f *Function) text(dst *strings.Builder, redact bool) {
	dst.WriteString(Mnemonic(f.Name))
	dst.WriteByte('(')
	for i := range f.Args {
		if i > 0 {
			dst.WriteString(", ")
		}
		f.Args[i].text(dst, redact)
	}
	dst.WriteByte(')')
}

func (f *Function) Equals(e Node) bool {
	ef, ok := e.(*Function)
	if !ok || f.Name != ef.Name || f.Applied() != ef.Applied() {
		return false
	}
	return slices.EqualFunc(f.Args, ef.Args, Equal)
}

func (f *Function) walk(v Visitor) {
	for i := range f.Args {
		Walk(v, f.Args[i])
	}
}

func (f *Function) rewrite(r Rewriter) Node {
	return &Function{Name: f.Name, Args: rewriteAll(r, f.Args)}
}

// List is an ordered, possibly empty collection.
type List struct {
	Elements []Node
}

// Call returns the call expression that l denotes
// when its first element is a bare function reference:
// the head names the function and the remaining
// elements are its arguments. l is not modified.
func (l *List) Call() (*Function, bool) {
	if len(l.Elements) == 0 {
		return nil, false
	}
	head, ok := l.Elements[0].(*Function)
	if !ok || head.Applied() {
		return nil, false
	}
	args := make([]Node, len(l.Elements)-1)
	copy(args, l.Elements[1:])
	return &Function{Name: head.Name, Args: args}, true
}

func (l *List) text(dst *strings.Builder, redact bool) {
	if c, ok := l.Call(); ok {
		c.text(dst, redact)
		return
	}
	dst.WriteByte('[')
	for i := range l.Elements {
		if i > 0 {
			dst.WriteString(", ")
		}
		l.Elements[i].text(dst, redact)
	}
	dst.WriteByte(']')
}

func (l *List) Equals(e Node) bool {
	el, ok := e.(*List)
	return ok && slices.EqualFunc(l.Elements, el.Elements, Equal)
}

func (l *List) walk(v Visitor) {
	for i := range l.Elements {
		Walk(v, l.Elements[i])
	}
}

func (l *List) rewrite(r Rewriter) Node {
	return &List{Elements: rewriteAll(r, l.Elements)}
}

// Dict is a single key/value pair;
// either side may itself be a List.
type Dict struct {
	Key, Value Node
}

func (d *Dict) text(dst *strings.Builder, redact bool) {
	dst.WriteByte('{')
	d.Key.text(dst, redact)
	dst.WriteString(": ")
	d.Value.text(dst, redact)
	dst.WriteByte('}')
}

func (d *Dict) Equals(e Node) bool {
	ed, ok := e.(*Dict)
	return ok && Equal(d.Key, ed.Key) && Equal(d.Value, ed.Value)
}

func (d *Dict) walk(v Visitor) {
	Walk(v, d.Key)
	Walk(v, d.Value)
}

func (d *Dict) rewrite(r Rewriter) Node {
	return &Dict{Key: Rewrite(r, d.Key), Value: Rewrite(r, d.Value)}
}

func rewriteAll(r Rewriter, lst []Node) []Node {
	if lst == nil {
		return nil
	}
	out := make([]Node, len(lst))
	for i := range lst {
		out[i] = Rewrite(r, lst[i])
	}
	return out
}
