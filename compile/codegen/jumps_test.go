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
package codegen

import (
	"testing"

	"nanoc/ir"
)

// TestOptimizeJumpsDropsJumpToImmediateSuccessor checks §4.25's basic
// rule: an unconditional jump to the very next block disappears.
func TestOptimizeJumpsDropsJumpToImmediateSuccessor(t *testing.T) {
	blocks := []Block{
		{Label: "a$0", Tail: ir.Begin{Exprs: []ir.Node{ir.Funcall{Callee: ir.Symbol{Name: "b$0"}}}}},
		{Label: "b$0", Tail: ir.Begin{Exprs: []ir.Node{ir.Funcall{Callee: ir.Symbol{Name: "rax"}}}}},
	}
	got := OptimizeJumps(blocks)
	begin := got[0].Tail.(ir.Begin)
	if len(begin.Exprs) != 0 {
		t.Errorf("jump to immediate successor should be deleted, got %#v", begin)
	}
}

// TestOptimizeJumpsCollapsesIfToIf1WhenElseFallsThrough checks that a
// two-armed If collapses to If1 when its else-branch is the immediate
// successor, keeping only the conditional jump to the then-label.
func TestOptimizeJumpsCollapsesIfToIf1WhenElseFallsThrough(t *testing.T) {
	pred := ir.Prim2{Op: "=", Arg1: ir.Symbol{Name: "rax"}, Arg2: ir.Int64{Value: 0}}
	blocks := []Block{
		{Label: "a$0", Tail: ir.Begin{Exprs: []ir.Node{ir.If{
			Pred: pred,
			Then: ir.Funcall{Callee: ir.Symbol{Name: "t$0"}},
			Else: ir.Funcall{Callee: ir.Symbol{Name: "e$0"}},
		}}}},
		{Label: "e$0", Tail: ir.Begin{Exprs: []ir.Node{ir.Funcall{Callee: ir.Symbol{Name: "rax"}}}}},
	}
	got := OptimizeJumps(blocks)
	begin := got[0].Tail.(ir.Begin)
	last := begin.Exprs[len(begin.Exprs)-1]
	if1, ok := last.(ir.If1)
	if !ok {
		t.Fatalf("got %#v, want ir.If1", last)
	}
	label, ok := calleeLabel(if1.Then)
	if !ok || label != "t$0" {
		t.Errorf("If1.Then = %#v, want a jump to t$0", if1.Then)
	}
}

// TestOptimizeJumpsCollapsesIfToIf1WhenThenFallsThroughInvertsPred
// checks the mirror case: when the then-branch falls through, the
// predicate must be negated since If1 always branches on true.
func TestOptimizeJumpsCollapsesIfToIf1WhenThenFallsThroughInvertsPred(t *testing.T) {
	pred := ir.Prim2{Op: "=", Arg1: ir.Symbol{Name: "rax"}, Arg2: ir.Int64{Value: 0}}
	blocks := []Block{
		{Label: "a$0", Tail: ir.Begin{Exprs: []ir.Node{ir.If{
			Pred: pred,
			Then: ir.Funcall{Callee: ir.Symbol{Name: "t$0"}},
			Else: ir.Funcall{Callee: ir.Symbol{Name: "e$0"}},
		}}}},
		{Label: "t$0", Tail: ir.Begin{Exprs: []ir.Node{ir.Funcall{Callee: ir.Symbol{Name: "rax"}}}}},
	}
	got := OptimizeJumps(blocks)
	begin := got[0].Tail.(ir.Begin)
	last := begin.Exprs[len(begin.Exprs)-1]
	if1, ok := last.(ir.If1)
	if !ok {
		t.Fatalf("got %#v, want ir.If1", last)
	}
	not, ok := if1.Pred.(ir.Prim1)
	if !ok || not.Op != "not" {
		t.Errorf("If1.Pred = %#v, want a \"not\"-wrapped predicate", if1.Pred)
	}
	label, ok := calleeLabel(if1.Then)
	if !ok || label != "e$0" {
		t.Errorf("If1.Then = %#v, want a jump to e$0", if1.Then)
	}
}
