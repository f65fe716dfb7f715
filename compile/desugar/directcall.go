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

// Package desugar holds the pass pipeline of §4.2-4.9: the tree stays
// source-IR shaped throughout, each pass rewriting one aspect of it
// (direct calls, anonymous lambdas, binding forms, closures, known
// calls, procedure primitives, letrec lifting).
package desugar

import "nanoc/ir"

// DirectCall rewrites Funcall(Lambda(xs,body), vs) with |xs|=|vs| to
// Let({x:v}, body) — an immediately-applied lambda is just a let.
// Structural descent only; no other shape is altered (§4.2).
func DirectCall(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Symbol, ir.Quote, ir.Nop:
		return n
	case ir.If:
		return ir.If{Pred: DirectCall(v.Pred), Then: DirectCall(v.Then), Else: DirectCall(v.Else)}
	case ir.Begin:
		return ir.Begin{Exprs: mapNodes(v.Exprs, DirectCall)}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: DirectCall(v.Value)}
	case ir.Let:
		return ir.Let{Bindings: mapBindingValues(v.Bindings, DirectCall), Body: DirectCall(v.Body)}
	case ir.Letrec:
		return ir.Letrec{Bindings: mapBindingValues(v.Bindings, DirectCall), Body: DirectCall(v.Body)}
	case ir.Lambda:
		return ir.Lambda{Formals: v.Formals, Body: DirectCall(v.Body)}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: DirectCall(v.Arg)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: DirectCall(v.Arg1), Arg2: DirectCall(v.Arg2)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: DirectCall(v.Arg1), Arg2: DirectCall(v.Arg2), Arg3: DirectCall(v.Arg3)}
	case ir.Funcall:
		callee := DirectCall(v.Callee)
		args := mapNodes(v.Args, DirectCall)
		if lam, ok := callee.(ir.Lambda); ok && len(lam.Formals) == len(args) {
			bindings := make([]ir.Binding, len(args))
			for i := range args {
				bindings[i] = ir.Binding{Name: lam.Formals[i], Value: args[i]}
			}
			return ir.Let{Bindings: bindings, Body: lam.Body}
		}
		return ir.Funcall{Callee: callee, Args: args}
	default:
		ir.InvariantViolation("direct-call", n)
		return nil
	}
}

func mapNodes(ns []ir.Node, f func(ir.Node) ir.Node) []ir.Node {
	if ns == nil {
		return nil
	}
	out := make([]ir.Node, len(ns))
	for i, n := range ns {
		out[i] = f(n)
	}
	return out
}

func mapBindingValues(bs []ir.Binding, f func(ir.Node) ir.Node) []ir.Binding {
	if bs == nil {
		return nil
	}
	out := make([]ir.Binding, len(bs))
	for i, b := range bs {
		out[i] = ir.Binding{Name: b.Name, Value: f(b.Value)}
	}
	return out
}
