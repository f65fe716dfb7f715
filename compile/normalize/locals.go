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
package normalize

import "nanoc/ir"

// UncoverLocals wraps every lambda body, and the top-level letrec
// body, in a Locals node recording every user variable its Let
// bindings introduce (§4.12). The wrapped node is left untouched
// otherwise; the set is gathered by a separate walk so remove-let can
// later drop the Let forms themselves without losing the names.
func UncoverLocals(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: wrapLocals(lam.Body)}}
		}
		return ir.Letrec{Bindings: bindings, Body: wrapLocals(v.Body)}
	default:
		return wrapLocals(n)
	}
}

func wrapLocals(body ir.Node) ir.Node {
	vars := ir.NewNameSet()
	collectLocals(body, vars)
	return ir.Locals{Vars: vars, Body: body}
}

func collectLocals(n ir.Node, out *ir.NameSet) {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop, ir.Symbol:
	case ir.If:
		collectLocals(v.Pred, out)
		collectLocals(v.Then, out)
		collectLocals(v.Else, out)
	case ir.Begin:
		for _, e := range v.Exprs {
			collectLocals(e, out)
		}
	case ir.Set:
		collectLocals(v.Value, out)
	case ir.Let:
		for _, b := range v.Bindings {
			out.Add(b.Name)
			collectLocals(b.Value, out)
		}
		collectLocals(v.Body, out)
	case ir.Prim1:
		collectLocals(v.Arg, out)
	case ir.Prim2:
		collectLocals(v.Arg1, out)
		collectLocals(v.Arg2, out)
	case ir.Prim3:
		collectLocals(v.Arg1, out)
		collectLocals(v.Arg2, out)
		collectLocals(v.Arg3, out)
	case ir.Funcall:
		collectLocals(v.Callee, out)
		for _, a := range v.Args {
			collectLocals(a, out)
		}
	case ir.Alloc:
		collectLocals(v.Size, out)
	case ir.Mref:
		collectLocals(v.Base, out)
		collectLocals(v.Offset, out)
	case ir.Mset:
		collectLocals(v.Base, out)
		collectLocals(v.Offset, out)
		collectLocals(v.Value, out)
	default:
		ir.InvariantViolation("uncover-locals", n)
	}
}
