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

// isTriv reports whether n is a bare Symbol or Int64, the only shapes
// a Prim2 or Mref operand may take once specify-representation is
// done with it.
func isTriv(n ir.Node) bool {
	switch n.(type) {
	case ir.Symbol, ir.Int64:
		return true
	default:
		return false
	}
}

// assertTrivOperands walks the whole tree and fails the test at the
// first Prim2 or Mref whose operand is not a bare triv.
func assertTrivOperands(t *testing.T, n ir.Node) {
	t.Helper()
	switch v := n.(type) {
	case ir.Int64, ir.Bool, ir.EmptyList, ir.Void, ir.Symbol, ir.Nop:
	case ir.If:
		assertTrivOperands(t, v.Pred)
		assertTrivOperands(t, v.Then)
		assertTrivOperands(t, v.Else)
	case ir.Begin:
		for _, e := range v.Exprs {
			assertTrivOperands(t, e)
		}
	case ir.Set:
		assertTrivOperands(t, v.Value)
	case ir.Let:
		for _, b := range v.Bindings {
			assertTrivOperands(t, b.Value)
		}
		assertTrivOperands(t, v.Body)
	case ir.Letrec:
		for _, b := range v.Bindings {
			assertTrivOperands(t, b.Value)
		}
		assertTrivOperands(t, v.Body)
	case ir.Lambda:
		assertTrivOperands(t, v.Body)
	case ir.Funcall:
		assertTrivOperands(t, v.Callee)
		for _, a := range v.Args {
			assertTrivOperands(t, a)
		}
	case ir.Prim2:
		if !isTriv(v.Arg1) {
			t.Errorf("Prim2(%s) operand 1 = %#v, not a triv", v.Op, v.Arg1)
		}
		if !isTriv(v.Arg2) {
			t.Errorf("Prim2(%s) operand 2 = %#v, not a triv", v.Op, v.Arg2)
		}
		assertTrivOperands(t, v.Arg1)
		assertTrivOperands(t, v.Arg2)
	case ir.Mref:
		if !isTriv(v.Base) {
			t.Errorf("Mref base = %#v, not a triv", v.Base)
		}
		if !isTriv(v.Offset) {
			t.Errorf("Mref offset = %#v, not a triv", v.Offset)
		}
	case ir.Mset:
		if !isTriv(v.Base) {
			t.Errorf("Mset base = %#v, not a triv", v.Base)
		}
		if !isTriv(v.Offset) {
			t.Errorf("Mset offset = %#v, not a triv", v.Offset)
		}
		assertTrivOperands(t, v.Value)
	case ir.Alloc:
		assertTrivOperands(t, v.Size)
	default:
		t.Fatalf("assertTrivOperands: unhandled node %#v", n)
	}
}

func TestSpecifyRepresentationConsProducesTrivOperandsOnly(t *testing.T) {
	gen := ir.NewGen()
	// (let ([p (cons (+ 1 2) (cons 3 4))]) (car p))
	n := ir.Let{
		Bindings: []ir.Binding{{
			Name: "p",
			Value: ir.Prim2{
				Op:   "cons",
				Arg1: ir.Prim2{Op: "+", Arg1: ir.Int64{Value: 1}, Arg2: ir.Int64{Value: 2}},
				Arg2: ir.Prim2{Op: "cons", Arg1: ir.Int64{Value: 3}, Arg2: ir.Int64{Value: 4}},
			},
		}},
		Body: ir.Prim1{Op: "car", Arg: ir.Symbol{Name: "p"}},
	}
	got := SpecifyRepresentation(n, gen)
	assertTrivOperands(t, got)
}

func TestSpecifyRepresentationEncodesFixnumImmediate(t *testing.T) {
	gen := ir.NewGen()
	got := SpecifyRepresentation(ir.Int64{Value: 3}, gen)
	i, ok := got.(ir.Int64)
	if !ok || i.Value != encodeFixnum(3) {
		t.Errorf("got %#v, want Int64{%d}", got, encodeFixnum(3))
	}
}

func TestSpecifyRepresentationQuotedListProducesTrivOperandsOnly(t *testing.T) {
	gen := ir.NewGen()
	n := ir.Quote{Value: ir.DatumPair{Car: ir.DatumInt64(1), Cdr: ir.DatumPair{Car: ir.DatumInt64(2), Cdr: ir.DatumEmptyList{}}}}
	got := SpecifyRepresentation(n, gen)
	assertTrivOperands(t, got)
}

func TestSpecifyRepresentationIfPredicateIsBarePrim2(t *testing.T) {
	gen := ir.NewGen()
	n := ir.If{
		Pred: ir.Prim2{Op: "<", Arg1: ir.Prim2{Op: "+", Arg1: ir.Int64{Value: 1}, Arg2: ir.Int64{Value: 1}}, Arg2: ir.Int64{Value: 3}},
		Then: ir.Int64{Value: 1},
		Else: ir.Int64{Value: 2},
	}
	got := SpecifyRepresentation(n, gen)
	assertTrivOperands(t, got)
	var iff ir.If
	switch v := got.(type) {
	case ir.If:
		iff = v
	case ir.Let:
		body := ir.Node(v)
		for {
			if let, ok := body.(ir.Let); ok {
				body = let.Body
				continue
			}
			break
		}
		iff = body.(ir.If)
	default:
		t.Fatalf("got %#v, want ir.If possibly wrapped in Lets floated from the predicate", got)
	}
	if _, ok := iff.Pred.(ir.Prim2); !ok {
		t.Errorf("if predicate = %#v, want a bare Prim2 relop", iff.Pred)
	}
}
