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

// Package normalize holds §4.10-4.13: the passes that turn the
// closure-free source IR, one context and one representation
// decision at a time, into the shape impose-calling-convention
// expects.
package normalize

import "nanoc/ir"

type context int

const (
	ctxValue context = iota
	ctxPred
	ctxEffect
)

var predPrims = map[string]bool{
	"<=": true, "<": true, "=": true, ">=": true, ">": true,
	"eq?": true, "boolean?": true, "fixnum?": true, "null?": true,
	"pair?": true, "vector?": true, "procedure?": true,
}

var effectPrims = map[string]bool{
	"set-car!": true, "set-cdr!": true, "vector-set!": true, "procedure-set!": true,
}

// NormalizeContext classifies every subexpression by value, predicate
// or effect context and rewrites cross-context uses accordingly
// (§4.10). The whole program runs in value context (a tail return).
func NormalizeContext(n ir.Node) ir.Node {
	return norm(n, ctxValue)
}

func norm(n ir.Node, c context) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.EmptyList, ir.Void, ir.Quote, ir.Symbol:
		if c == ctxEffect {
			// A bare literal or variable reference has no side effect
			// of its own; dropped rather than carried as dead code.
			return ir.Nop{}
		}
		return wrapValue(n, c)
	case ir.Bool:
		if c == ctxEffect {
			return ir.Nop{}
		}
		return v
	case ir.Nop:
		return wrapEffect(v, c)
	case ir.If:
		return ir.If{Pred: norm(v.Pred, ctxPred), Then: norm(v.Then, c), Else: norm(v.Else, c)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		last := len(v.Exprs) - 1
		for i, e := range v.Exprs {
			if i == last {
				exprs[i] = norm(e, c)
			} else {
				exprs[i] = norm(e, ctxEffect)
			}
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return wrapEffect(ir.Set{Target: v.Target, Value: norm(v.Value, ctxValue)}, c)
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: norm(b.Value, ctxValue)}
		}
		return ir.Let{Bindings: bindings, Body: norm(v.Body, c)}
	case ir.Letrec:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			lam := b.Value.(ir.Lambda)
			bindings[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: norm(lam.Body, ctxValue)}}
		}
		return ir.Letrec{Bindings: bindings, Body: norm(v.Body, c)}
	case ir.Lambda:
		return ir.Lambda{Formals: v.Formals, Body: norm(v.Body, ctxValue)}
	case ir.Funcall:
		callee := norm(v.Callee, ctxValue)
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = norm(a, ctxValue)
		}
		return wrapValue(ir.Funcall{Callee: callee, Args: args}, c)
	case ir.Prim1:
		return normPrim(v.Op, []ir.Node{norm(v.Arg, ctxValue)}, c, func(a []ir.Node) ir.Node { return ir.Prim1{Op: v.Op, Arg: a[0]} })
	case ir.Prim2:
		return normPrim(v.Op, []ir.Node{norm(v.Arg1, ctxValue), norm(v.Arg2, ctxValue)}, c, func(a []ir.Node) ir.Node { return ir.Prim2{Op: v.Op, Arg1: a[0], Arg2: a[1]} })
	case ir.Prim3:
		return normPrim(v.Op, []ir.Node{norm(v.Arg1, ctxValue), norm(v.Arg2, ctxValue), norm(v.Arg3, ctxValue)}, c, func(a []ir.Node) ir.Node { return ir.Prim3{Op: v.Op, Arg1: a[0], Arg2: a[1], Arg3: a[2]} })
	default:
		ir.InvariantViolation("normalize-context", n)
		return nil
	}
}

func normPrim(op string, args []ir.Node, c context, build func([]ir.Node) ir.Node) ir.Node {
	node := build(args)
	switch {
	case predPrims[op]:
		switch c {
		case ctxPred:
			return node
		case ctxValue:
			return ir.If{Pred: node, Then: ir.Bool{Value: true}, Else: ir.Bool{Value: false}}
		default: // ctxEffect: a predicate has no side effect of its own
			return ir.Nop{}
		}
	case effectPrims[op]:
		return wrapEffect(node, c)
	default: // value-producing primitive
		return wrapValue(node, c)
	}
}

// wrapValue adapts a value-context node for use in c, per §4.10: a
// predicate used as a value already went through the predPrims branch
// above, so by the time wrapValue is reached node is a genuine value;
// when c is ctxPred it is compared against false, inverted so that a
// non-false value reads as true (the usual Scheme truthiness rule).
func wrapValue(node ir.Node, c context) ir.Node {
	switch c {
	case ctxValue:
		return node
	case ctxPred:
		return ir.If{
			Pred: ir.Prim2{Op: "eq?", Arg1: node, Arg2: ir.Bool{Value: false}},
			Then: ir.Bool{Value: false},
			Else: ir.Bool{Value: true},
		}
	default: // ctxEffect: evaluated for any nested effects, result discarded
		return node
	}
}

// wrapEffect adapts an effect-context node (Set or an effect
// primitive) for use in c (§4.10).
func wrapEffect(node ir.Node, c context) ir.Node {
	switch c {
	case ctxEffect:
		return node
	case ctxValue:
		return ir.Begin{Exprs: []ir.Node{node, ir.Void{}}}
	default: // ctxPred
		return ir.Begin{Exprs: []ir.Node{node, ir.Bool{Value: true}}}
	}
}
