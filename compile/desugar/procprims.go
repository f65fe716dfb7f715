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

// Primitive names introduced by IntroduceProcedurePrimitives. These
// are ordinary Prim1/Prim2/Prim3 nodes; specify-representation (§4.11)
// is what later turns them into Alloc/Mref/Mset against the tagged
// procedure representation.
const (
	PrimMakeProcedure = "make-procedure"
	PrimProcedureCode = "procedure-code"
	PrimProcedureRef  = "procedure-ref"
	PrimProcedureSet  = "procedure-set!"
)

// freeSlot records that a name is bound, within the current Bindfree
// scope, to the i-th captured slot of closure pointer cp.
type freeSlot struct {
	cp  string
	idx int64
}

// IntroduceProcedurePrimitives lowers Bindfree/Closures into explicit
// make-procedure/procedure-ref/procedure-set!/procedure-code calls and
// removes both wrapper node kinds from the tree (§4.8).
func IntroduceProcedurePrimitives(n ir.Node) ir.Node {
	return lowerProcPrims(n, map[string]freeSlot{})
}

func lowerProcPrims(n ir.Node, subst map[string]freeSlot) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop:
		return n
	case ir.Symbol:
		if s, ok := subst[v.Name]; ok {
			return ir.Prim2{Op: PrimProcedureRef, Arg1: ir.Symbol{Name: s.cp}, Arg2: ir.Int64{Value: s.idx}}
		}
		return v
	case ir.If:
		return ir.If{
			Pred: lowerProcPrims(v.Pred, subst),
			Then: lowerProcPrims(v.Then, subst),
			Else: lowerProcPrims(v.Else, subst),
		}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = lowerProcPrims(e, subst)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		if s, ok := subst[v.Target]; ok {
			return ir.Prim3{Op: PrimProcedureSet, Arg1: ir.Symbol{Name: s.cp}, Arg2: ir.Int64{Value: s.idx}, Arg3: lowerProcPrims(v.Value, subst)}
		}
		return ir.Set{Target: v.Target, Value: lowerProcPrims(v.Value, subst)}
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: lowerProcPrims(b.Value, subst)}
		}
		return ir.Let{Bindings: bindings, Body: lowerProcPrims(v.Body, subst)}
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: lowerProcPrims(lam.Body, subst)}}
		}
		return ir.Letrec{Bindings: bindings, Body: lowerProcPrims(v.Body, subst)}
	case ir.Bindfree:
		return lowerBindfree(v, subst)
	case ir.Closures:
		return lowerClosures(v, subst)
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: lowerProcPrims(v.Arg, subst)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: lowerProcPrims(v.Arg1, subst), Arg2: lowerProcPrims(v.Arg2, subst)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: lowerProcPrims(v.Arg1, subst), Arg2: lowerProcPrims(v.Arg2, subst), Arg3: lowerProcPrims(v.Arg3, subst)}
	case ir.Funcall:
		return lowerFuncall(v, subst)
	default:
		ir.InvariantViolation("introduce-procedure-primitives", n)
		return nil
	}
}

// lowerBindfree establishes the free-variable-to-slot mapping captured
// by a Bindfree and drops the wrapper, leaving just the rewritten body.
func lowerBindfree(v ir.Bindfree, subst map[string]freeSlot) ir.Node {
	cp := v.Vars[len(v.Vars)-1]
	fvs := v.Vars[:len(v.Vars)-1]
	inner := make(map[string]freeSlot, len(subst)+len(fvs))
	for k, s := range subst {
		inner[k] = s
	}
	for i, fv := range fvs {
		inner[fv] = freeSlot{cp: cp, idx: int64(i)}
	}
	return lowerProcPrims(v.Body, inner)
}

// lowerClosures turns a Closures block into: a Let binding each
// closure pointer to a make-procedure result, followed by a
// procedure-set! for every captured free variable, followed by the
// original body (§4.8).
func lowerClosures(v ir.Closures, subst map[string]freeSlot) ir.Node {
	mpBindings := make([]ir.Binding, len(v.Tuples))
	for i, t := range v.Tuples {
		mpBindings[i] = ir.Binding{
			Name:  t.CP,
			Value: ir.Prim2{Op: PrimMakeProcedure, Arg1: ir.Symbol{Name: t.CodeLabel}, Arg2: ir.Int64{Value: int64(len(t.FreeVars))}},
		}
	}
	var sets []ir.Node
	for _, t := range v.Tuples {
		for i, fv := range t.FreeVars {
			sets = append(sets, ir.Prim3{
				Op:   PrimProcedureSet,
				Arg1: ir.Symbol{Name: t.CP},
				Arg2: ir.Int64{Value: int64(i)},
				Arg3: lowerProcPrims(ir.Symbol{Name: fv}, subst),
			})
		}
	}
	body := lowerProcPrims(v.Body, subst)
	var seq ir.Node = body
	if len(sets) > 0 {
		seq = ir.Begin{Exprs: append(sets, body)}
	}
	return ir.Let{Bindings: mpBindings, Body: seq}
}

// lowerFuncall inserts a procedure-code extraction around an indirect
// callee, leaving calls that already target a label alone.
func lowerFuncall(v ir.Funcall, subst map[string]freeSlot) ir.Node {
	args := make([]ir.Node, len(v.Args))
	for i, a := range v.Args {
		args[i] = lowerProcPrims(a, subst)
	}
	if sym, ok := v.Callee.(ir.Symbol); ok && ir.IsLabel(sym.Name) {
		return ir.Funcall{Callee: sym, Args: args}
	}
	callee := lowerProcPrims(v.Callee, subst)
	return ir.Funcall{Callee: ir.Prim1{Op: PrimProcedureCode, Arg: callee}, Args: args}
}
