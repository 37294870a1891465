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
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SnellerInc/qconv/expr"
)

// ParseError describes a structural
// or numeric error in the input
type ParseError struct {
	Pos     int    // offset in the input string
	Want    string // what the parser expected (empty if Message is set)
	Got     string // the token found instead, or "end of input"
	Message string // textual description of an error
	Err     error  // underlying cause, if any
}

func (e *ParseError) Error() string {
	var msg string
	if e.Want != "" {
		msg = fmt.Sprintf("at position %d: expected %s, got %s", e.Pos, e.Want, e.Got)
	} else {
		msg = fmt.Sprintf("at position %d: %s", e.Pos, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser is a recursive-descent parser
// over the tokens of a single input.
type Parser struct {
	src  []byte
	toks []Token
	pos  int
}

// NewParser tokenizes src and returns
// a Parser positioned at the first token.
func NewParser(src []byte) *Parser {
	return &Parser{src: src, toks: Tokenize(src)}
}

// Parse parses the next expression.
func (p *Parser) Parse() (expr.Node, error) {
	return p.expr()
}

// Rest returns the number of tokens
// that have not been consumed yet.
func (p *Parser) Rest() int {
	return len(p.toks) - p.pos
}

// Parse parses the first expression in src
// and returns the result, or an error if one
// is encountered. Any tokens following the
// first expression are ignored.
func Parse(src []byte) (expr.Node, error) {
	return NewParser(src).Parse()
}

func (p *Parser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *Parser) next() Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *Parser) eof(want string) error {
	return &ParseError{
		Pos:  len(p.src),
		Want: want,
		Got:  "end of input",
		Err:  io.ErrUnexpectedEOF,
	}
}

func unexpected(t Token, want string) error {
	return &ParseError{Pos: t.Pos, Want: want, Got: t.String()}
}

func closing(want string, open Token) string {
	return fmt.Sprintf("%s to close %s at position %d", want, open, open.Pos)
}

func (p *Parser) expect(k Kind, want string) error {
	t, ok := p.peek()
	if !ok {
		return p.eof(want)
	}
	if t.Kind != k {
		return unexpected(t, want)
	}
	p.pos++
	return nil
}

func (p *Parser) expr() (expr.Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.eof("expression")
	}
	switch t.Kind {
	case LBracket:
		return p.list()
	case LBrace:
		return p.dict()
	case Word:
		if isupper(t.Text) {
			return p.constructor()
		}
		p.pos++
		return simple(t)
	case Colon:
		p.pos++
		return expr.String(t.Text), nil
	default:
		// parentheses have no meaning
		// outside of a constructor
		return nil, unexpected(t, "expression")
	}
}

func (p *Parser) list() (expr.Node, error) {
	open := p.next()
	var elems []expr.Node
	for {
		t, ok := p.peek()
		if !ok {
			return nil, p.eof(closing("']'", open))
		}
		switch t.Kind {
		case Comma:
			p.pos++
			continue
		case RBracket:
			p.pos++
			return bind(elems), nil
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
}

// bind applies the list-as-call convention:
// a list headed by a bare function reference
// is the application of that function to the
// remaining elements
func bind(elems []expr.Node) expr.Node {
	lst := &expr.List{Elements: elems}
	if call, ok := lst.Call(); ok {
		return call
	}
	return lst
}

func (p *Parser) dict() (expr.Node, error) {
	open := p.next()
	key, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(Comma, "',' in dict"); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(RBrace, closing("'}'", open)); err != nil {
		return nil, err
	}
	return &expr.Dict{Key: key, Value: value}, nil
}

// constructor parses Name[payload]; an upper-case
// word without a following '[' is plain text
func (p *Parser) constructor() (expr.Node, error) {
	name := p.next()
	if t, ok := p.peek(); !ok || t.Kind != LBracket {
		return expr.String(name.Text), nil
	}
	open := p.next()
	body, inner, err := p.payload(open)
	if err != nil {
		return nil, err
	}
	switch name.Text {
	case "Symbol":
		return expr.Symbol(body), nil
	case "Int", "Long":
		i, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, badPayload(name, body, err)
		}
		return expr.Integer(i), nil
	case "Real", "Float":
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, badPayload(name, body, err)
		}
		return expr.Float(f), nil
	case "Bool":
		return expr.Bool(body == "1"), nil
	case "Func":
		if body == "" {
			return nil, &ParseError{Pos: name.Pos, Message: "Func[] without a function name"}
		}
		return &expr.Function{Name: body}, nil
	case "LSymbol":
		lst := &expr.List{}
		for i := range inner {
			switch inner[i].Kind {
			case Comma, LBracket, RBracket:
				continue
			}
			lst.Elements = append(lst.Elements, expr.Symbol(inner[i].Text))
		}
		return lst, nil
	default:
		return expr.String(name.Text + "[" + body + "]"), nil
	}
}

func badPayload(name Token, body string, err error) error {
	return &ParseError{
		Pos:     name.Pos,
		Message: fmt.Sprintf("invalid %s payload %q", name.Text, body),
		Err:     err,
	}
}

// payload consumes tokens through the ']' matching open
// and returns the input text between the brackets, trimmed
// of surrounding whitespace, along with the tokens it spans.
// Slicing the input rather than joining tokens keeps glyphs
// such as "::" and ",", and any inner spacing, intact.
func (p *Parser) payload(open Token) (string, []Token, error) {
	depth := 1
	first := p.pos
	for p.pos < len(p.toks) {
		t := p.next()
		switch t.Kind {
		case LBracket:
			depth++
		case RBracket:
			depth--
			if depth == 0 {
				return p.slice(open.Pos+1, t.Pos), p.toks[first : p.pos-1], nil
			}
		}
	}
	return "", nil, p.eof(closing("']'", open))
}

func (p *Parser) slice(from, to int) string {
	return strings.TrimSpace(string(p.src[from:to]))
}

func isupper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// simple classifies a word that is
// not a constructor: digits are an
// Integer, digits with exactly one '.'
// are a Float, and anything else is text
func simple(t Token) (expr.Node, error) {
	s := t.Text
	if digits(s) {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.Pos, Message: fmt.Sprintf("integer %s out of range", s), Err: err}
		}
		return expr.Integer(i), nil
	}
	if strings.Count(s, ".") == 1 && digits(strings.Replace(s, ".", "", 1)) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.Pos, Message: fmt.Sprintf("float %s out of range", s), Err: err}
		}
		return expr.Float(f), nil
	}
	return expr.String(s), nil
}
