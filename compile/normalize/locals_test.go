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

import (
	"reflect"
	"testing"

	"nanoc/ir"
)

func TestUncoverLocalsCollectsNestedLetBindings(t *testing.T) {
	n := ir.Let{
		Bindings: []ir.Binding{{Name: "x", Value: ir.Int64{Value: 1}}},
		Body: ir.Let{
			Bindings: []ir.Binding{{Name: "y", Value: ir.Symbol{Name: "x"}}},
			Body:     ir.Symbol{Name: "y"},
		},
	}
	got := UncoverLocals(n)
	locals, ok := got.(ir.Locals)
	if !ok {
		t.Fatalf("got %#v, want ir.Locals", got)
	}
	if !locals.Vars.Contains("x") || !locals.Vars.Contains("y") {
		t.Errorf("locals = %v, want both x and y", locals.Vars.Elements())
	}
	if !reflect.DeepEqual(locals.Body, n) {
		t.Errorf("Locals body was not left untouched")
	}
}

func TestUncoverLocalsWrapsEachLambdaBodySeparately(t *testing.T) {
	n := ir.Letrec{
		Bindings: []ir.Binding{{Name: "f$1", Value: ir.Lambda{
			Formals: []string{"a"},
			Body:    ir.Let{Bindings: []ir.Binding{{Name: "t", Value: ir.Symbol{Name: "a"}}}, Body: ir.Symbol{Name: "t"}},
		}}},
		Body: ir.Symbol{Name: "f$1"},
	}
	got := UncoverLocals(n).(ir.Letrec)
	lam := got.Bindings[0].Value.(ir.Lambda)
	locals, ok := lam.Body.(ir.Locals)
	if !ok {
		t.Fatalf("lambda body = %#v, want ir.Locals", lam.Body)
	}
	if !locals.Vars.Contains("t") {
		t.Errorf("lambda locals = %v, want t", locals.Vars.Elements())
	}
	if _, ok := got.Body.(ir.Locals); !ok {
		t.Error("top-level letrec body was not wrapped in its own ir.Locals")
	}
}
