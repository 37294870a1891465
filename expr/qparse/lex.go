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
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Kind is the lexical class of a Token.
type Kind uint8

const (
	// Word is a maximal run of characters that
	// are neither whitespace nor structural.
	Word Kind = iota
	LBracket
	RBracket
	LParen
	RParen
	Comma
	LBrace
	RBrace
	Colon
)

var kindNames = [...]string{
	Word:     "word",
	LBracket: "'['",
	RBracket: "']'",
	LParen:   "'('",
	RParen:   "')'",
	Comma:    "','",
	LBrace:   "'{'",
	RBrace:   "'}'",
	Colon:    "':'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a single lexical unit.
type Token struct {
	Kind Kind
	// Text is the token exactly as it
	// appears in the input.
	Text string
	// Pos is the byte offset of the
	// token in the input.
	Pos int
}

func (t Token) String() string {
	if t.Kind == Word {
		return strconv.Quote(t.Text)
	}
	return t.Kind.String()
}

// structural returns the Kind of x
// if x is a single-character token
func structural(x byte) (Kind, bool) {
	switch x {
	case '[':
		return LBracket, true
	case ']':
		return RBracket, true
	case '(':
		return LParen, true
	case ')':
		return RParen, true
	case ',':
		return Comma, true
	case '{':
		return LBrace, true
	case '}':
		return RBrace, true
	case ':':
		return Colon, true
	}
	return Word, false
}

// space returns the width of the whitespace
// character at the start of buf, or 0
func space(buf []byte) int {
	if buf[0] < utf8.RuneSelf {
		switch buf[0] {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return 1
		}
		return 0
	}
	r, size := utf8.DecodeRune(buf)
	if unicode.IsSpace(r) {
		return size
	}
	return 0
}

// Tokenize splits src into tokens.
// Whitespace separates tokens and is
// otherwise dropped. Tokenize never fails;
// an empty or all-whitespace input yields
// no tokens.
func Tokenize(src []byte) []Token {
	var out []Token
	pos := 0
	for pos < len(src) {
		if n := space(src[pos:]); n > 0 {
			pos += n
			continue
		}
		if k, ok := structural(src[pos]); ok {
			out = append(out, Token{Kind: k, Text: string(src[pos : pos+1]), Pos: pos})
			pos++
			continue
		}
		start := pos
		for pos < len(src) {
			if _, ok := structural(src[pos]); ok || space(src[pos:]) > 0 {
				break
			}
			pos++
		}
		out = append(out, Token{Kind: Word, Text: string(src[start:pos]), Pos: start})
	}
	return out
}
