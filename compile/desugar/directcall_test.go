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

import (
	"reflect"
	"testing"

	"nanoc/ir"
)

func TestDirectCallRewritesImmediateApplication(t *testing.T) {
	// ((lambda (x) (+ x 1)) 41)
	n := ir.Funcall{
		Callee: ir.Lambda{
			Formals: []string{"x"},
			Body:    ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Int64{Value: 1}},
		},
		Args: []ir.Node{ir.Int64{Value: 41}},
	}
	got := DirectCall(n)
	let, ok := got.(ir.Let)
	if !ok {
		t.Fatalf("DirectCall(immediate application) = %#v, want ir.Let", got)
	}
	if len(let.Bindings) != 1 || let.Bindings[0].Name != "x" {
		t.Fatalf("unexpected bindings: %#v", let.Bindings)
	}
	if let.Bindings[0].Value != (ir.Int64{Value: 41}) {
		t.Errorf("binding value = %#v, want Int64{41}", let.Bindings[0].Value)
	}
}

func TestDirectCallLeavesArityMismatchAlone(t *testing.T) {
	n := ir.Funcall{
		Callee: ir.Lambda{Formals: []string{"x", "y"}, Body: ir.Symbol{Name: "x"}},
		Args:   []ir.Node{ir.Int64{Value: 1}},
	}
	got := DirectCall(n)
	if _, ok := got.(ir.Funcall); !ok {
		t.Errorf("DirectCall(arity-mismatched application) = %#v, want it left as ir.Funcall", got)
	}
}

func TestDirectCallLeavesNonLambdaCalleeAlone(t *testing.T) {
	n := ir.Funcall{Callee: ir.Symbol{Name: "f"}, Args: []ir.Node{ir.Int64{Value: 1}}}
	got := DirectCall(n)
	if !reflect.DeepEqual(got, n) {
		t.Errorf("DirectCall(application of a variable) = %#v, want it unchanged", got)
	}
}
