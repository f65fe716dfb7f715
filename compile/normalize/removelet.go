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

// RemoveLet rewrites every Let into a Begin of Sets followed by the
// body; the bound names are already recorded in the enclosing Locals
// set from uncover-locals, so nothing is lost. Binding order is kept
// as written, satisfying the ordering requirement trivially since the
// bindings are independent by construction (§4.13).
func RemoveLet(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop, ir.Symbol:
		return n
	case ir.If:
		return ir.If{Pred: RemoveLet(v.Pred), Then: RemoveLet(v.Then), Else: RemoveLet(v.Else)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = RemoveLet(e)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: RemoveLet(v.Value)}
	case ir.Let:
		sets := make([]ir.Node, len(v.Bindings))
		for i, b := range v.Bindings {
			sets[i] = ir.Set{Target: b.Name, Value: RemoveLet(b.Value)}
		}
		return ir.Begin{Exprs: append(sets, RemoveLet(v.Body))}
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: RemoveLet(lam.Body)}}
		}
		return ir.Letrec{Bindings: bindings, Body: RemoveLet(v.Body)}
	case ir.Locals:
		return ir.Locals{Vars: v.Vars, Body: RemoveLet(v.Body)}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: RemoveLet(v.Arg)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: RemoveLet(v.Arg1), Arg2: RemoveLet(v.Arg2)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: RemoveLet(v.Arg1), Arg2: RemoveLet(v.Arg2), Arg3: RemoveLet(v.Arg3)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = RemoveLet(a)
		}
		return ir.Funcall{Callee: RemoveLet(v.Callee), Args: args}
	case ir.Alloc:
		return ir.Alloc{Size: RemoveLet(v.Size)}
	case ir.Mref:
		return ir.Mref{Base: RemoveLet(v.Base), Offset: RemoveLet(v.Offset)}
	case ir.Mset:
		return ir.Mset{Base: RemoveLet(v.Base), Offset: RemoveLet(v.Offset), Value: RemoveLet(v.Value)}
	default:
		ir.InvariantViolation("remove-let", n)
		return nil
	}
}
