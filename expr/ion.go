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
	"errors"
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
)

// Encode writes n to w as a single Ion value.
//
// Literals map onto the matching Ion scalar
// (a Symbol onto an Ion symbol, a String onto
// an Ion string), a List is an Ion list, and
// functions and dicts are structs tagged
// with a "type" field.
func Encode(w ion.Writer, n Node) error {
	return n.encode(w)
}

// MarshalIon returns the Ion encoding of n;
// text selects the text format over binary.
func MarshalIon(n Node, text bool) ([]byte, error) {
	var buf bytes.Buffer
	var w ion.Writer
	if text {
		w = ion.NewTextWriter(&buf)
	} else {
		w = ion.NewBinaryWriter(&buf)
	}
	if err := Encode(w, n); err != nil {
		return nil, err
	}
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalIon decodes the first value in buf,
// which may be in either Ion format.
func UnmarshalIon(buf []byte) (Node, error) {
	return Decode(ion.NewReaderBytes(buf))
}

// errw keeps the first error
// returned by a sequence of writes
type errw struct {
	w   ion.Writer
	err error
}

func (e *errw) do(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *errw) field(name string) {
	e.do(e.w.FieldName(ion.NewSymbolTokenFromString(name)))
}

func (e *errw) settype(str string) {
	e.field("type")
	e.do(e.w.WriteSymbolFromString(str))
}

func (s Symbol) encode(w ion.Writer) error  { return w.WriteSymbolFromString(string(s)) }
func (i Integer) encode(w ion.Writer) error { return w.WriteInt(int64(i)) }
func (f Float) encode(w ion.Writer) error   { return w.WriteFloat(float64(f)) }
func (b Bool) encode(w ion.Writer) error    { return w.WriteBool(bool(b)) }
func (s String) encode(w ion.Writer) error  { return w.WriteString(string(s)) }

func (f *Function) encode(w ion.Writer) error {
	e := &errw{w: w}
	e.do(w.BeginStruct())
	e.settype("func")
	e.field("name")
	e.do(w.WriteString(f.Name))
	// a bare reference has no "args" field at all
	if f.Applied() {
		e.field("args")
		e.do(encodeList(w, f.Args))
	}
	e.do(w.EndStruct())
	return e.err
}

func (l *List) encode(w ion.Writer) error {
	return encodeList(w, l.Elements)
}

func encodeList(w ion.Writer, lst []Node) error {
	e := &errw{w: w}
	e.do(w.BeginList())
	for i := range lst {
		e.do(lst[i].encode(w))
	}
	e.do(w.EndList())
	return e.err
}

func (d *Dict) encode(w ion.Writer) error {
	e := &errw{w: w}
	e.do(w.BeginStruct())
	e.settype("dict")
	e.field("key")
	e.do(d.Key.encode(w))
	e.field("value")
	e.do(d.Value.encode(w))
	e.do(w.EndStruct())
	return e.err
}

var (
	errUnexpectedField = errors.New("unexpected field")
)

// Decode reads the next value from r
// and returns the Node it encodes.
func Decode(r ion.Reader) (Node, error) {
	if !r.Next() {
		err := r.Err()
		if err == nil {
			err = fmt.Errorf("no input data")
		}
		return nil, fmt.Errorf("expr.Decode: %w", err)
	}
	node, err := decode(r)
	if err != nil {
		err = fmt.Errorf("expr.Decode: %w", err)
	}
	return node, err
}

func decode(r ion.Reader) (Node, error) {
	if r.IsNull() {
		return nil, fmt.Errorf("unexpected null %s", r.Type())
	}
	switch r.Type() {
	case ion.BoolType:
		b, err := r.BoolValue()
		if err != nil {
			return nil, err
		}
		return Bool(*b), nil
	case ion.IntType:
		i, err := r.Int64Value()
		if err != nil {
			return nil, err
		}
		return Integer(*i), nil
	case ion.FloatType:
		f, err := r.FloatValue()
		if err != nil {
			return nil, err
		}
		return Float(*f), nil
	case ion.StringType:
		s, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		return String(*s), nil
	case ion.SymbolType:
		s, err := r.StringValue()
		if err != nil {
			return nil, err
		}
		return Symbol(*s), nil
	case ion.ListType:
		lst, err := decodeList(r)
		if err != nil {
			return nil, err
		}
		return &List{Elements: lst}, nil
	case ion.StructType:
		return decodeStruct(r)
	default:
		return nil, fmt.Errorf("cannot decode ion %s", r.Type())
	}
}

// decodeList decodes the elements of the
// list r is positioned on; the result is
// non-nil even when the list is empty
func decodeList(r ion.Reader) ([]Node, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	lst := []Node{}
	for r.Next() {
		n, err := decode(r)
		if err != nil {
			return nil, err
		}
		lst = append(lst, n)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return lst, r.StepOut()
}

func decodeStruct(r ion.Reader) (Node, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	var (
		typ, name  string
		args       []Node
		key, value Node
	)
	for r.Next() {
		sym, err := r.FieldName()
		if err != nil {
			return nil, err
		}
		if sym == nil || sym.Text == nil {
			return nil, errUnexpectedField
		}
		switch label := *sym.Text; label {
		case "type", "name":
			s, err := r.StringValue()
			if err != nil {
				return nil, err
			}
			if s == nil {
				return nil, fmt.Errorf("null %q field", label)
			}
			if label == "type" {
				typ = *s
			} else {
				name = *s
			}
		case "args":
			if r.Type() != ion.ListType {
				return nil, fmt.Errorf("function arguments: expected list, got %s", r.Type())
			}
			args, err = decodeList(r)
		case "key":
			key, err = decode(r)
		case "value":
			value, err = decode(r)
		default:
			return nil, fmt.Errorf("%w %q", errUnexpectedField, label)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	switch typ {
	case "func":
		return &Function{Name: name, Args: args}, nil
	case "dict":
		if key == nil || value == nil {
			return nil, fmt.Errorf("dict without both key and value")
		}
		return &Dict{Key: key, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", typ)
	}
}
