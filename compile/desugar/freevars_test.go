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

func TestUncoverFreeWrapsLambdaBodyWithItsFreeSet(t *testing.T) {
	// (letrec ([f (lambda (x) (+ x y))]) f), y is free in f's body.
	n := ir.Letrec{
		Bindings: []ir.Binding{
			{Name: "f", Value: ir.Lambda{
				Formals: []string{"x"},
				Body:    ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Symbol{Name: "y"}},
			}},
		},
		Body: ir.Symbol{Name: "f"},
	}
	got, free := UncoverFree(n)
	lr := got.(ir.Letrec)
	lam := lr.Bindings[0].Value.(ir.Lambda)
	wrap, ok := lam.Body.(ir.Free)
	if !ok {
		t.Fatalf("lambda body = %#v, want ir.Free wrapper", lam.Body)
	}
	if !reflect.DeepEqual(wrap.Vars, []string{"y"}) {
		t.Errorf("lambda free vars = %v, want [y]", wrap.Vars)
	}
	if !reflect.DeepEqual(free.Sorted(), []string{"y"}) {
		t.Errorf("whole-letrec free set = %v, want [y] (f is letrec-bound, y is bound nowhere)", free.Sorted())
	}
}

func TestUncoverFreeLetBindingExcludesOwnNames(t *testing.T) {
	n := ir.Let{
		Bindings: []ir.Binding{{Name: "x", Value: ir.Int64{Value: 1}}},
		Body:     ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Symbol{Name: "z"}},
	}
	_, free := UncoverFree(n)
	sorted := free.Sorted()
	if !reflect.DeepEqual(sorted, []string{"z"}) {
		t.Errorf("free set = %v, want [z] (x is bound by the let)", sorted)
	}
}
