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

// ConvertClosures rewrites every Letrec of Free-wrapped lambdas into a
// Letrec of labeled code blocks plus a Closures marker recording how
// to build each closure object, and appends the closure pointer as
// the last argument of every call (§4.6, see also design notes in
// §9 "Closure conversion").
func ConvertClosures(n ir.Node, gen *ir.Gen) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Quote, ir.Nop, ir.Symbol:
		return n
	case ir.If:
		return ir.If{Pred: ConvertClosures(v.Pred, gen), Then: ConvertClosures(v.Then, gen), Else: ConvertClosures(v.Else, gen)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = ConvertClosures(e, gen)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: ConvertClosures(v.Value, gen)}
	case ir.Let:
		bindings := make([]ir.Binding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ir.Binding{Name: b.Name, Value: ConvertClosures(b.Value, gen)}
		}
		return ir.Let{Bindings: bindings, Body: ConvertClosures(v.Body, gen)}
	case ir.Letrec:
		return convertLetrec(v, gen)
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: ConvertClosures(v.Arg, gen)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: ConvertClosures(v.Arg1, gen), Arg2: ConvertClosures(v.Arg2, gen)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: ConvertClosures(v.Arg1, gen), Arg2: ConvertClosures(v.Arg2, gen), Arg3: ConvertClosures(v.Arg3, gen)}
	case ir.Funcall:
		return convertFuncall(v, gen)
	default:
		ir.InvariantViolation("convert-closures", n)
		return nil
	}
}

func convertLetrec(v ir.Letrec, gen *ir.Gen) ir.Node {
	tuples := make([]ir.ClosureTuple, len(v.Bindings))
	bindings := make([]ir.Binding, len(v.Bindings))
	for i, b := range v.Bindings {
		lam := b.Value.(ir.Lambda)
		freeWrap := lam.Body.(ir.Free)
		codeLabel := ir.CodeLabel(b.Name)
		tuples[i] = ir.ClosureTuple{CP: b.Name, CodeLabel: codeLabel, FreeVars: freeWrap.Vars}

		newFormals := append(append([]string{}, lam.Formals...), b.Name)
		bindVars := append(append([]string{}, freeWrap.Vars...), b.Name)
		newBody := ConvertClosures(freeWrap.Body, gen)
		bindfree := ir.Bindfree{Vars: bindVars, Body: newBody}
		bindings[i] = ir.Binding{Name: codeLabel, Value: ir.Lambda{Formals: newFormals, Body: bindfree}}
	}
	body := ConvertClosures(v.Body, gen)
	return ir.Letrec{Bindings: bindings, Body: ir.Closures{Tuples: tuples, Body: body}}
}

func convertFuncall(v ir.Funcall, gen *ir.Gen) ir.Node {
	args := make([]ir.Node, len(v.Args))
	for i, a := range v.Args {
		args[i] = ConvertClosures(a, gen)
	}
	if sym, ok := v.Callee.(ir.Symbol); ok {
		return ir.Funcall{Callee: sym, Args: append(args, sym)}
	}
	callee := ConvertClosures(v.Callee, gen)
	tmp := gen.UVar("clo")
	return ir.Let{
		Bindings: []ir.Binding{{Name: tmp, Value: callee}},
		Body:     ir.Funcall{Callee: ir.Symbol{Name: tmp}, Args: append(args, ir.Symbol{Name: tmp})},
	}
}
