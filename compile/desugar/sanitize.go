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

// SanitizeBindingForms splits a Let whose bindings mix Lambda and
// non-Lambda values into a non-lambda-only Let wrapping a lambda-only
// Letrec, so every later pass sees homogeneous binding values per
// binding form. Let stays outermost so a let-bound lambda can still
// see its sibling plain bindings, which remain in scope from the
// enclosing Let (§4.4). A group left empty by the split is elided
// entirely rather than emitted as an empty binder.
func SanitizeBindingForms(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Symbol, ir.Quote, ir.Nop:
		return n
	case ir.If:
		return ir.If{Pred: SanitizeBindingForms(v.Pred), Then: SanitizeBindingForms(v.Then), Else: SanitizeBindingForms(v.Else)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = SanitizeBindingForms(e)
		}
		return ir.Begin{Exprs: exprs}
	case ir.Set:
		return ir.Set{Target: v.Target, Value: SanitizeBindingForms(v.Value)}
	case ir.Let:
		return sanitizeLet(v)
	case ir.Letrec:
		return ir.Letrec{Bindings: sanitizeLambdaOnlyBindings(v.Bindings), Body: SanitizeBindingForms(v.Body)}
	case ir.Lambda:
		return ir.Lambda{Formals: v.Formals, Body: SanitizeBindingForms(v.Body)}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: SanitizeBindingForms(v.Arg)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: SanitizeBindingForms(v.Arg1), Arg2: SanitizeBindingForms(v.Arg2)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: SanitizeBindingForms(v.Arg1), Arg2: SanitizeBindingForms(v.Arg2), Arg3: SanitizeBindingForms(v.Arg3)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = SanitizeBindingForms(a)
		}
		return ir.Funcall{Callee: SanitizeBindingForms(v.Callee), Args: args}
	default:
		ir.InvariantViolation("sanitize-binding-forms", n)
		return nil
	}
}

func sanitizeLambdaOnlyBindings(bs []ir.Binding) []ir.Binding {
	out := make([]ir.Binding, len(bs))
	for i, b := range bs {
		lam := b.Value.(ir.Lambda)
		out[i] = ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: SanitizeBindingForms(lam.Body)}}
	}
	return out
}

func sanitizeLet(v ir.Let) ir.Node {
	var lambdaBindings, plainBindings []ir.Binding
	for _, b := range v.Bindings {
		if lam, ok := b.Value.(ir.Lambda); ok {
			lambdaBindings = append(lambdaBindings, ir.Binding{Name: b.Name, Value: ir.Lambda{Formals: lam.Formals, Body: SanitizeBindingForms(lam.Body)}})
		} else {
			plainBindings = append(plainBindings, ir.Binding{Name: b.Name, Value: SanitizeBindingForms(b.Value)})
		}
	}
	result := SanitizeBindingForms(v.Body)
	if len(lambdaBindings) > 0 {
		result = ir.Letrec{Bindings: lambdaBindings, Body: result}
	}
	if len(plainBindings) > 0 {
		result = ir.Let{Bindings: plainBindings, Body: result}
	}
	return result
}
