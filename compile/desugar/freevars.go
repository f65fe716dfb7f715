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

// UncoverFree computes, bottom-up, the free-variable set of every
// Lambda's body (the names it references that are not among its own
// formals) and wraps that body in Free(vars, body). The set returned
// alongside the rewritten tree is the free set of the whole
// expression; callers below the top level use it to decide their own
// binders' free sets, the top-level caller discards it (§4.5).
func UncoverFree(n ir.Node) (ir.Node, *ir.NameSet) {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop:
		return n, ir.NewNameSet()
	case ir.Symbol:
		return n, ir.NameSetOf(v.Name)
	case ir.If:
		p, fp := UncoverFree(v.Pred)
		t, ft := UncoverFree(v.Then)
		e, fe := UncoverFree(v.Else)
		free := fp.Clone()
		free.Union(ft)
		free.Union(fe)
		return ir.If{Pred: p, Then: t, Else: e}, free
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		free := ir.NewNameSet()
		for i, e := range v.Exprs {
			ne, f := UncoverFree(e)
			exprs[i] = ne
			free.Union(f)
		}
		return ir.Begin{Exprs: exprs}, free
	case ir.Set:
		val, f := UncoverFree(v.Value)
		free := f.Clone()
		free.Add(v.Target)
		return ir.Set{Target: v.Target, Value: val}, free
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		bound := ir.NewNameSet()
		free := ir.NewNameSet()
		for i, b := range v.Bindings {
			val, f := UncoverFree(b.Value)
			bindings[i] = ir.Binding{Name: b.Name, Value: val}
			bound.Add(b.Name)
			free.Union(f)
		}
		body, bf := UncoverFree(v.Body)
		bf.Sorted()
		bodyFree := bf.Clone()
		subtract(bodyFree, bound)
		free.Union(bodyFree)
		return ir.Let{Bindings: bindings, Body: body}, free
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		bound := ir.NewNameSet()
		for _, b := range v.Bindings {
			bound.Add(b.Name)
		}
		free := ir.NewNameSet()
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			newLam, lf := uncoverFreeLambda(lam)
			bindings[i] = ir.Binding{Name: b.Name, Value: newLam}
			free.Union(lf)
		}
		body, bf := UncoverFree(v.Body)
		free.Union(bf)
		subtract(free, bound)
		return ir.Letrec{Bindings: bindings, Body: body}, free
	case ir.Lambda:
		lam, free := uncoverFreeLambda(v)
		return lam, free
	case ir.Prim1:
		arg, f := UncoverFree(v.Arg)
		return ir.Prim1{Op: v.Op, Arg: arg}, f
	case ir.Prim2:
		a1, f1 := UncoverFree(v.Arg1)
		a2, f2 := UncoverFree(v.Arg2)
		f1.Union(f2)
		return ir.Prim2{Op: v.Op, Arg1: a1, Arg2: a2}, f1
	case ir.Prim3:
		a1, f1 := UncoverFree(v.Arg1)
		a2, f2 := UncoverFree(v.Arg2)
		a3, f3 := UncoverFree(v.Arg3)
		f1.Union(f2)
		f1.Union(f3)
		return ir.Prim3{Op: v.Op, Arg1: a1, Arg2: a2, Arg3: a3}, f1
	case ir.Funcall:
		callee, free := UncoverFree(v.Callee)
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			na, f := UncoverFree(a)
			args[i] = na
			free.Union(f)
		}
		return ir.Funcall{Callee: callee, Args: args}, free
	default:
		ir.InvariantViolation("uncover-free", n)
		return nil, nil
	}
}

func uncoverFreeLambda(lam ir.Lambda) (ir.Node, *ir.NameSet) {
	body, bodyFree := UncoverFree(lam.Body)
	free := bodyFree.Clone()
	formals := ir.NameSetOf(lam.Formals...)
	subtract(free, formals)
	wrapped := ir.Free{Vars: free.Sorted(), Body: body}
	return ir.Lambda{Formals: lam.Formals, Body: wrapped}, free
}

func subtract(s, remove *ir.NameSet) {
	remove.ForEach(func(n string) { s.Remove(n) })
}
