// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package ir

import (
	"fmt"
	"strings"
)

// Print renders a tree back to a Scheme-like surface form, used for
// debug dumps between passes and for diagnostics naming an offending
// subtree (§7). It is not required to round-trip through the reader;
// low-IR-only variants (Locate, Ulocals, ...) print in a bracketed
// form of their own.
func Print(n Node) string {
	var b strings.Builder
	print1(&b, n)
	return b.String()
}

// Stringer adapts any Node to fmt.Stringer for use in SemanticError.
type Stringer struct{ Node Node }

func (s Stringer) String() string { return Print(s.Node) }

func printBindings(b *strings.Builder, bs []Binding) {
	b.WriteByte('(')
	for i, bind := range bs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "[%s ", bind.Name)
		print1(b, bind.Value)
		b.WriteByte(']')
	}
	b.WriteByte(')')
}

func print1(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case Int64:
		fmt.Fprintf(b, "'%d", v.Value)
	case Bool:
		if v.Value {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case EmptyList:
		b.WriteString("'()")
	case Void:
		b.WriteString("(void)")
	case Symbol:
		b.WriteString(v.Name)
	case Quote:
		fmt.Fprintf(b, "'%s", v.Value.String())
	case If:
		b.WriteString("(if ")
		print1(b, v.Pred)
		b.WriteByte(' ')
		print1(b, v.Then)
		b.WriteByte(' ')
		print1(b, v.Else)
		b.WriteByte(')')
	case Begin:
		b.WriteString("(begin")
		for _, e := range v.Exprs {
			b.WriteByte(' ')
			print1(b, e)
		}
		b.WriteByte(')')
	case Set:
		fmt.Fprintf(b, "(set! %s ", v.Target)
		print1(b, v.Value)
		b.WriteByte(')')
	case Let:
		b.WriteString("(let ")
		printBindings(b, v.Bindings)
		b.WriteByte(' ')
		print1(b, v.Body)
		b.WriteByte(')')
	case Letrec:
		b.WriteString("(letrec ")
		printBindings(b, v.Bindings)
		b.WriteByte(' ')
		print1(b, v.Body)
		b.WriteByte(')')
	case Lambda:
		fmt.Fprintf(b, "(lambda (%s) ", strings.Join(v.Formals, " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case Prim1:
		fmt.Fprintf(b, "(%s ", v.Op)
		print1(b, v.Arg)
		b.WriteByte(')')
	case Prim2:
		fmt.Fprintf(b, "(%s ", v.Op)
		print1(b, v.Arg1)
		b.WriteByte(' ')
		print1(b, v.Arg2)
		b.WriteByte(')')
	case Prim3:
		fmt.Fprintf(b, "(%s ", v.Op)
		print1(b, v.Arg1)
		b.WriteByte(' ')
		print1(b, v.Arg2)
		b.WriteByte(' ')
		print1(b, v.Arg3)
		b.WriteByte(')')
	case Funcall:
		b.WriteByte('(')
		print1(b, v.Callee)
		for _, a := range v.Args {
			b.WriteByte(' ')
			print1(b, a)
		}
		b.WriteByte(')')
	case Nop:
		b.WriteString("(nop)")
	case Free:
		fmt.Fprintf(b, "(free (%s) ", strings.Join(v.Vars, " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case Bindfree:
		fmt.Fprintf(b, "(bindfree (%s) ", strings.Join(v.Vars, " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case Closures:
		b.WriteString("(closures (")
		for i, t := range v.Tuples {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "[%s %s (%s)]", t.CP, t.CodeLabel, strings.Join(t.FreeVars, " "))
		}
		b.WriteString(") ")
		print1(b, v.Body)
		b.WriteByte(')')
	case Alloc:
		b.WriteString("(alloc ")
		print1(b, v.Size)
		b.WriteByte(')')
	case Mref:
		b.WriteString("(mref ")
		print1(b, v.Base)
		b.WriteByte(' ')
		print1(b, v.Offset)
		b.WriteByte(')')
	case Mset:
		b.WriteString("(mset! ")
		print1(b, v.Base)
		b.WriteByte(' ')
		print1(b, v.Offset)
		b.WriteByte(' ')
		print1(b, v.Value)
		b.WriteByte(')')
	case Locals:
		fmt.Fprintf(b, "(locals (%s) ", strings.Join(v.Vars.Sorted(), " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case LowLambda:
		fmt.Fprintf(b, "(lambda %s (%s) ", v.Label, strings.Join(v.Formals, " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case LowLetrec:
		b.WriteString("(letrec (")
		for i, p := range v.Procs {
			if i > 0 {
				b.WriteByte(' ')
			}
			print1(b, p)
		}
		b.WriteString(") ")
		print1(b, v.Body)
		b.WriteByte(')')
	case If1:
		b.WriteString("(if1 ")
		print1(b, v.Pred)
		b.WriteByte(' ')
		print1(b, v.Then)
		b.WriteByte(')')
	case Ulocals:
		fmt.Fprintf(b, "(ulocals (%s) ", strings.Join(v.Vars.Sorted(), " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case Spills:
		fmt.Fprintf(b, "(spills (%s) ", strings.Join(v.Vars.Sorted(), " "))
		print1(b, v.Body)
		b.WriteByte(')')
	case Locate:
		b.WriteString("(locate (")
		first := true
		for k, home := range v.Homes {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			fmt.Fprintf(b, "[%s %s]", k, home)
		}
		b.WriteString(") ")
		print1(b, v.Body)
		b.WriteByte(')')
	case FrameConflict:
		b.WriteString("(frame-conflict ...) ")
		print1(b, v.Body)
	case RegisterConflict:
		b.WriteString("(register-conflict ...) ")
		print1(b, v.Body)
	case NewFrames:
		fmt.Fprintf(b, "(new-frames %d) ", len(v.Frames))
		print1(b, v.Body)
	case CallLive:
		fmt.Fprintf(b, "(call-live (%s)) ", strings.Join(v.Vars.Sorted(), " "))
		print1(b, v.Body)
	case ReturnPoint:
		fmt.Fprintf(b, "(return-point %s ", v.Label)
		print1(b, v.Body)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<?%T>", n)
	}
}
