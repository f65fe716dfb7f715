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

func TestOptimizeKnownCallsRedirectsToCodeLabel(t *testing.T) {
	n := ir.Closures{
		Tuples: []ir.ClosureTuple{{CP: "f.5000", CodeLabel: "f$5000", FreeVars: nil}},
		Body:   ir.Funcall{Callee: ir.Symbol{Name: "f.5000"}, Args: []ir.Node{ir.Symbol{Name: "f.5000"}}},
	}
	got := OptimizeKnownCalls(n).(ir.Closures)
	fc, ok := got.Body.(ir.Funcall)
	if !ok {
		t.Fatalf("got %#v, want ir.Funcall", got.Body)
	}
	sym, ok := fc.Callee.(ir.Symbol)
	if !ok || sym.Name != "f$5000" {
		t.Errorf("callee = %#v, want direct reference to code label f$5000", fc.Callee)
	}
}

func TestOptimizeKnownCallsLeavesUnknownCalleeAlone(t *testing.T) {
	n := ir.Funcall{Callee: ir.Symbol{Name: "g.6000"}, Args: []ir.Node{ir.Symbol{Name: "g.6000"}}}
	got := OptimizeKnownCalls(n).(ir.Funcall)
	sym, ok := got.Callee.(ir.Symbol)
	if !ok || sym.Name != "g.6000" {
		t.Errorf("callee = %#v, want unchanged reference to g.6000 (no enclosing Closures)", got.Callee)
	}
}
