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

func TestConvertClosuresBuildsTupleAndAppendsClosurePointer(t *testing.T) {
	gen := ir.NewGen()
	n := ir.Letrec{
		Bindings: []ir.Binding{
			{Name: "f.5000", Value: ir.Lambda{
				Formals: []string{"x"},
				Body:    ir.Free{Vars: []string{"y"}, Body: ir.Symbol{Name: "x"}},
			}},
		},
		Body: ir.Funcall{Callee: ir.Symbol{Name: "f.5000"}, Args: []ir.Node{ir.Int64{Value: 1}}},
	}
	got := ConvertClosures(n, gen).(ir.Letrec)
	if len(got.Bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(got.Bindings))
	}
	lam := got.Bindings[0].Value.(ir.Lambda)
	if lam.Formals[len(lam.Formals)-1] != "f.5000" {
		t.Errorf("code-label lambda formals = %v, want closure pointer appended last", lam.Formals)
	}
	if _, ok := lam.Body.(ir.Bindfree); !ok {
		t.Errorf("code-label lambda body = %#v, want ir.Bindfree", lam.Body)
	}
	closures, ok := got.Body.(ir.Closures)
	if !ok {
		t.Fatalf("letrec body = %#v, want ir.Closures", got.Body)
	}
	if len(closures.Tuples) != 1 || closures.Tuples[0].CP != "f.5000" {
		t.Fatalf("closure tuples = %#v, want one tuple for f.5000", closures.Tuples)
	}
	fc, ok := closures.Body.(ir.Funcall)
	if !ok {
		t.Fatalf("closures body = %#v, want ir.Funcall", closures.Body)
	}
	if len(fc.Args) != 2 {
		t.Errorf("funcall args = %#v, want original arg plus appended closure pointer", fc.Args)
	}
	last, ok := fc.Args[1].(ir.Symbol)
	if !ok || last.Name != "f.5000" {
		t.Errorf("last funcall arg = %#v, want the closure pointer symbol", fc.Args[1])
	}
}
