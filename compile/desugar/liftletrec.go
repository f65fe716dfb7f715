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
package desugar

import "nanoc/ir"

// LiftLetrec collects every lambda binding found anywhere in the tree
// into one top-level Letrec and leaves the rest of the program, with
// all inner Letrec wrappers stripped, as its body. Names coming out of
// convert-closures are already globally unique, so the union never
// collides (§4.9).
func LiftLetrec(n ir.Node) ir.Node {
	var bindings []ir.Binding
	body := collectLetrecs(n, &bindings)
	return ir.Letrec{Bindings: bindings, Body: body}
}

func collectLetrecs(n ir.Node, out *[]ir.Binding) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop, ir.Symbol:
		return n
	case ir.If:
		return ir.If{
			Pred: collectLetrecs(v.Pred, out),
			Then: collectLetrecs(v.Then, out),
			Else: collectLetrecs(v.Else, out),
		}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = collectLetrecs(e, out)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: collectLetrecs(v.Value, out)}
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: collectLetrecs(b.Value, out)}
		}
		return ir.Let{Bindings: bindings, Body: collectLetrecs(v.Body, out)}
	case ir.Letrec:
		for _, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			*out = append(*out, ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: collectLetrecs(lam.Body, out)}})
		}
		return collectLetrecs(v.Body, out)
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: collectLetrecs(v.Arg, out)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: collectLetrecs(v.Arg1, out), Arg2: collectLetrecs(v.Arg2, out)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: collectLetrecs(v.Arg1, out), Arg2: collectLetrecs(v.Arg2, out), Arg3: collectLetrecs(v.Arg3, out)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = collectLetrecs(a, out)
		}
		return ir.Funcall{Callee: collectLetrecs(v.Callee, out), Args: args}
	default:
		ir.InvariantViolation("lift-letrec", n)
		return nil
	}
}
