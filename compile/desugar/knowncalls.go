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

// OptimizeKnownCalls rewrites a call through a closure pointer bound by
// an in-scope Closures block directly to that closure's code label
// whenever the callee is a Symbol naming such a closure pointer. The
// argument list, including the closure pointer convert-closures
// appended as the last argument, is kept unchanged. This turns an
// indirect procedure-code call into a direct one wherever closure
// identity is statically known (§4.7).
func OptimizeKnownCalls(n ir.Node) ir.Node {
	return optimizeKnownCalls(n, map[string]ir.ClosureTuple{})
}

func optimizeKnownCalls(n ir.Node, known map[string]ir.ClosureTuple) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop, ir.Symbol:
		return n
	case ir.If:
		return ir.If{
			Pred: optimizeKnownCalls(v.Pred, known),
			Then: optimizeKnownCalls(v.Then, known),
			Else: optimizeKnownCalls(v.Else, known),
		}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = optimizeKnownCalls(e, known)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: optimizeKnownCalls(v.Value, known)}
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: optimizeKnownCalls(b.Value, known)}
		}
		return ir.Let{Bindings: bindings, Body: optimizeKnownCalls(v.Body, known)}
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: optimizeKnownCalls(lam.Body, known)}}
		}
		return ir.Letrec{Bindings: bindings, Body: optimizeKnownCalls(v.Body, known)}
	case ir.Bindfree:
		return ir.Bindfree{Vars: v.Vars, Body: optimizeKnownCalls(v.Body, known)}
	case ir.Closures:
		inner := extend(known, v.Tuples)
		return ir.Closures{Tuples: v.Tuples, Body: optimizeKnownCalls(v.Body, inner)}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: optimizeKnownCalls(v.Arg, known)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: optimizeKnownCalls(v.Arg1, known), Arg2: optimizeKnownCalls(v.Arg2, known)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: optimizeKnownCalls(v.Arg1, known), Arg2: optimizeKnownCalls(v.Arg2, known), Arg3: optimizeKnownCalls(v.Arg3, known)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = optimizeKnownCalls(a, known)
		}
		if sym, ok := v.Callee.(ir.Symbol); ok {
			if tup, ok := known[sym.Name]; ok {
				return ir.Funcall{Callee: ir.Symbol{Name: tup.CodeLabel}, Args: args}
			}
		}
		return ir.Funcall{Callee: optimizeKnownCalls(v.Callee, known), Args: args}
	default:
		ir.InvariantViolation("optimize-known-calls", n)
		return nil
	}
}

func extend(known map[string]ir.ClosureTuple, tuples []ir.ClosureTuple) map[string]ir.ClosureTuple {
	out := make(map[string]ir.ClosureTuple, len(known)+len(tuples))
	for k, v := range known {
		out[k] = v
	}
	for _, t := range tuples {
		out[t.CP] = t
	}
	return out
}
