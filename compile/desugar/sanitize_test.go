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
	"testing"

	"nanoc/ir"
)

func TestSanitizeBindingFormsSplitsMixedLet(t *testing.T) {
	n := ir.Let{
		Bindings: []ir.Binding{
			{Name: "f", Value: ir.Lambda{Formals: []string{"x"}, Body: ir.Symbol{Name: "x"}}},
			{Name: "y", Value: ir.Int64{Value: 1}},
		},
		Body: ir.Symbol{Name: "y"},
	}
	got := SanitizeBindingForms(n)
	let, ok := got.(ir.Let)
	if !ok {
		t.Fatalf("got %#v, want outer ir.Let (plain group wraps the lambda group, so lambdas still see their sibling plain bindings)", got)
	}
	if len(let.Bindings) != 1 || let.Bindings[0].Name != "y" {
		t.Fatalf("let bindings = %#v, want just y", let.Bindings)
	}
	lr, ok := let.Body.(ir.Letrec)
	if !ok {
		t.Fatalf("let body = %#v, want inner ir.Letrec for the lambda group", let.Body)
	}
	if len(lr.Bindings) != 1 || lr.Bindings[0].Name != "f" {
		t.Fatalf("letrec bindings = %#v, want just f", lr.Bindings)
	}
}

func TestSanitizeBindingFormsElidesEmptyGroup(t *testing.T) {
	n := ir.Let{
		Bindings: []ir.Binding{{Name: "f", Value: ir.Lambda{Formals: nil, Body: ir.Int64{Value: 1}}}},
		Body:     ir.Symbol{Name: "f"},
	}
	got := SanitizeBindingForms(n)
	if _, ok := got.(ir.Let); ok {
		t.Errorf("got an empty ir.Let wrapper, want it elided entirely: %#v", got)
	}
	if _, ok := got.(ir.Letrec); !ok {
		t.Fatalf("got %#v, want bare ir.Letrec with no plain-binding wrapper", got)
	}
}

func TestSanitizeBindingFormsLeavesHomogeneousLetAlone(t *testing.T) {
	n := ir.Let{
		Bindings: []ir.Binding{{Name: "y", Value: ir.Int64{Value: 1}}},
		Body:     ir.Symbol{Name: "y"},
	}
	got := SanitizeBindingForms(n)
	if _, ok := got.(ir.Let); !ok {
		t.Errorf("got %#v, want a plain ir.Let unchanged in shape", got)
	}
}
