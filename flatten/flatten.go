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

// Package flatten renders an expression
// tree as a sequence of single-assignment
// statements, one per call, followed by
// a final result binding.
package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/qconv/expr"
)

// Assignment binds the result of
// one call to a temporary.
type Assignment struct {
	Target string
	// Func is the rendered function
	// name (see expr.Mnemonic).
	Func string
	// Args are the rendered arguments;
	// calls among them have already
	// been replaced by temporaries.
	Args []string
}

func (a *Assignment) String() string {
	return a.Target + " = " + a.Func + "(" + strings.Join(a.Args, ", ") + ")"
}

// Program is the flattened form of an expression.
type Program struct {
	// Statements are in evaluation order:
	// every temporary is assigned before
	// it is referenced.
	Statements []Assignment
	// Result is the rendered root expression.
	Result string
}

// Lines returns one line per statement
// followed by the result binding.
func (p *Program) Lines() []string {
	out := make([]string, 0, len(p.Statements)+1)
	for i := range p.Statements {
		out = append(out, p.Statements[i].String())
	}
	return append(out, "result = "+p.Result)
}

// Text returns Lines joined with newlines.
func (p *Program) Text() string {
	return strings.Join(p.Lines(), "\n")
}

func (p *Program) String() string { return p.Text() }

// Flatten produces the Program for n.
// Temporaries are named temp1, temp2, ...
// in the order their calls complete:
// arguments are flattened left to right
// before the call that consumes them.
// Only calls get temporaries; lists,
// dicts, and literals are rendered
// in place as expr.ToString would.
//
// Flatten does not modify n, so it may be
// called any number of times on one tree.
func Flatten(n expr.Node) *Program {
	f := &flattener{}
	res := f.flatten(n)
	return &Program{Statements: f.stmts, Result: res}
}

type flattener struct {
	stmts []Assignment
	temps int
}

func (f *flattener) gensym() string {
	f.temps++
	return "temp" + strconv.Itoa(f.temps)
}

func (f *flattener) flatten(n expr.Node) string {
	switch n := n.(type) {
	case expr.Literal:
		return expr.ToString(n)
	case *expr.Function:
		return f.call(n)
	case *expr.List:
		if c, ok := n.Call(); ok {
			return f.call(c)
		}
		var dst strings.Builder
		dst.WriteByte('[')
		for i := range n.Elements {
			if i > 0 {
				dst.WriteString(", ")
			}
			dst.WriteString(f.flatten(n.Elements[i]))
		}
		dst.WriteByte(']')
		return dst.String()
	case *expr.Dict:
		k := f.flatten(n.Key)
		v := f.flatten(n.Value)
		return "{" + k + ": " + v + "}"
	default:
		panic(fmt.Sprintf("flatten: unexpected node %T", n))
	}
}

func (f *flattener) call(fn *expr.Function) string {
	args := make([]string, len(fn.Args))
	for i := range fn.Args {
		args[i] = f.flatten(fn.Args[i])
	}
	target := f.gensym()
	f.stmts = append(f.stmts, Assignment{
		Target: target,
		Func:   expr.Mnemonic(fn.Name),
		Args:   args,
	})
	return target
}
