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
	"testing"

	"nanoc/ir"
)

func TestNormalizeContextLiftsPredicateUsedAsValue(t *testing.T) {
	n := ir.Prim2{Op: "<", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Int64{Value: 0}}
	got := NormalizeContext(n)
	iff, ok := got.(ir.If)
	if !ok {
		t.Fatalf("got %#v, want ir.If (a value-context predicate becomes a boolean-producing if)", got)
	}
	if _, ok := iff.Pred.(ir.Prim2); !ok {
		t.Errorf("if predicate = %#v, want the original Prim2 untouched", iff.Pred)
	}
	if b, ok := iff.Then.(ir.Bool); !ok || !b.Value {
		t.Errorf("if then-branch = %#v, want Bool{true}", iff.Then)
	}
	if b, ok := iff.Else.(ir.Bool); !ok || b.Value {
		t.Errorf("if else-branch = %#v, want Bool{false}", iff.Else)
	}
}

func TestNormalizeContextDropsEffectlessPredicateInEffectPosition(t *testing.T) {
	n := ir.Begin{Exprs: []ir.Node{
		ir.Prim2{Op: "<", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Int64{Value: 0}},
		ir.Int64{Value: 1},
	}}
	got := NormalizeContext(n).(ir.Begin)
	if _, ok := got.Exprs[0].(ir.Nop); !ok {
		t.Errorf("non-tail predicate compiled to %#v, want ir.Nop (no side effect, discarded)", got.Exprs[0])
	}
}

func TestNormalizeContextWrapsEffectForValueContext(t *testing.T) {
	n := ir.Set{Target: "x", Value: ir.Int64{Value: 1}}
	got := NormalizeContext(n)
	begin, ok := got.(ir.Begin)
	if !ok || len(begin.Exprs) != 2 {
		t.Fatalf("got %#v, want a two-element Begin ending in Void", got)
	}
	if _, ok := begin.Exprs[1].(ir.Void); !ok {
		t.Errorf("begin tail = %#v, want ir.Void (a Set has no value of its own)", begin.Exprs[1])
	}
}

func TestNormalizeContextDropsBareLiteralInEffectPosition(t *testing.T) {
	n := ir.Begin{Exprs: []ir.Node{
		ir.Int64{Value: 1},
		ir.Symbol{Name: "x"},
		ir.Void{},
		ir.EmptyList{},
		ir.Int64{Value: 2},
	}}
	got := NormalizeContext(n).(ir.Begin)
	for _, e := range got.Exprs[:len(got.Exprs)-1] {
		if _, ok := e.(ir.Nop); !ok {
			t.Errorf("non-tail literal/symbol compiled to %#v, want ir.Nop (no side effect, discarded)", e)
		}
	}
}

func TestNormalizeContextPredContextLeavesPredicatePrimAlone(t *testing.T) {
	n := ir.If{
		Pred: ir.Prim2{Op: "fixnum?", Arg1: ir.Symbol{Name: "x"}, Arg2: ir.Symbol{Name: "x"}},
		Then: ir.Int64{Value: 1},
		Else: ir.Int64{Value: 2},
	}
	got := NormalizeContext(n).(ir.If)
	if _, ok := got.Pred.(ir.Prim2); !ok {
		t.Errorf("if predicate = %#v, want the bare Prim2 (already in predicate context)", got.Pred)
	}
}
