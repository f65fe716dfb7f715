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

// RemoveAnonymousLambda lifts any Lambda that appears somewhere other
// than the immediately-bound value of a Let/Letrec binding, replacing
// it with a single-binding Letrec that binds the lambda to a fresh
// "anon." label and whose body is a Symbol reference to that label
// (§4.3). This gives every later pass the
// guarantee that a Lambda node is always directly bound by name.
func RemoveAnonymousLambda(n ir.Node, gen *ir.Gen) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Symbol, ir.Quote, ir.Nop:
		return n
	case ir.If:
		return ir.If{Pred: RemoveAnonymousLambda(v.Pred, gen), Then: RemoveAnonymousLambda(v.Then, gen), Else: RemoveAnonymousLambda(v.Else, gen)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = RemoveAnonymousLambda(e, gen)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: RemoveAnonymousLambda(v.Value, gen)}
	case ir.Let:
		return ir.Let{Bindings: bindingsKeepLambda(v.Bindings, gen), Body: RemoveAnonymousLambda(v.Body, gen)}
	case ir.Letrec:
		return ir.Letrec{Bindings: bindingsKeepLambda(v.Bindings, gen), Body: RemoveAnonymousLambda(v.Body, gen)}
	case ir.Lambda:
		// An anonymous occurrence: the caller did not special-case this
		// node as a binding value, so it appears in operand/effect
		// position and must be lifted.
		body := RemoveAnonymousLambda(v.Body, gen)
		label := gen.Anon()
		return ir.Letrec{
			Bindings: []ir.Binding{{Name: label, Value: ir.Lambda{Formals: v.Formals, Body: body}}},
			Body:     ir.Symbol{Name: label},
		}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: RemoveAnonymousLambda(v.Arg, gen)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: RemoveAnonymousLambda(v.Arg1, gen), Arg2: RemoveAnonymousLambda(v.Arg2, gen)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: RemoveAnonymousLambda(v.Arg1, gen), Arg2: RemoveAnonymousLambda(v.Arg2, gen), Arg3: RemoveAnonymousLambda(v.Arg3, gen)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = RemoveAnonymousLambda(a, gen)
		}
		return ir.Funcall{Callee: RemoveAnonymousLambda(v.Callee, gen), Args: args}
	default:
		ir.InvariantViolation("remove-anonymous-lambda", n)
		return nil
	}
}

// bindingsKeepLambda processes a binding list where a Lambda value is
// already in bound position and so is left in place (only its body is
// recursed into); a non-lambda value is processed generically.
func bindingsKeepLambda(bs []ir.Binding, gen *ir.Gen) []ir.Binding {
	out := make([]ir.Binding, len(bs))
	for i, b := range bs {
		if lam, ok := b.Value.(ir.Lambda); ok {
			out[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: RemoveAnonymousLambda(lam.Body, gen)}}
		} else {
			out[i] = ir.Binding{Name: b.Name, Value: RemoveAnonymousLambda(b.Value, gen)}
		}
	}
	return out
}
