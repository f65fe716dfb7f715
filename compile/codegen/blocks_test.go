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

func blockLabels(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Label
	}
	return out
}

// TestExposeBasicBlocksSplitsIfIntoTwoSuccessors checks §4.24's core
// rule: a tail-position If becomes two freshly labeled blocks plus a
// conditional jump between them, never an If surviving in the flat
// list.
func TestExposeBasicBlocksSplitsIfIntoTwoSuccessors(t *testing.T) {
	gen := ir.NewGen()
	body := ir.If{
		Pred: ir.Prim2{Op: "=", Arg1: ir.Symbol{Name: "rax"}, Arg2: ir.Int64{Value: 0}},
		Then: ir.Funcall{Callee: ir.Symbol{Name: "f$0"}},
		Else: ir.Funcall{Callee: ir.Symbol{Name: "g$0"}},
	}
	prog := ir.LowLetrec{Body: body}

	blocks := ExposeBasicBlocks(prog, gen)

	// main$ plus the two branch blocks.
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3 (main + two branches): %v", len(blocks), blockLabels(blocks))
	}
	mainTail, ok := blocks[0].Tail.(ir.Begin)
	if !ok || len(mainTail.Exprs) == 0 {
		t.Fatalf("main block tail = %#v, want a non-empty Begin", blocks[0].Tail)
	}
	last := mainTail.Exprs[len(mainTail.Exprs)-1]
	iff, ok := last.(ir.If)
	if !ok {
		t.Fatalf("main block's tail statement = %#v, want ir.If", last)
	}
	if _, ok := iff.Then.(ir.Funcall); !ok {
		t.Errorf("If.Then = %#v, want a Funcall jump to the then-block's label", iff.Then)
	}
	if _, ok := iff.Else.(ir.Funcall); !ok {
		t.Errorf("If.Else = %#v, want a Funcall jump to the else-block's label", iff.Else)
	}
}

// TestExposeBasicBlocksReturnPointSplitsIntoCallAndContinuation checks
// that a ReturnPoint ends its enclosing block and starts a fresh one
// at its own label holding the continuation.
func TestExposeBasicBlocksReturnPointSplitsIntoCallAndContinuation(t *testing.T) {
	gen := ir.NewGen()
	body := ir.Begin{Exprs: []ir.Node{
		ir.ReturnPoint{
			Label: "rp.1",
			Body: ir.Begin{Exprs: []ir.Node{
				ir.Set{Target: "r15", Value: ir.Symbol{Name: "rp.1"}},
				ir.Funcall{Callee: ir.Symbol{Name: "f$0"}},
			}},
		},
		ir.Funcall{Callee: ir.Symbol{Name: "rp.main"}},
	}}
	prog := ir.LowLetrec{Body: body}

	blocks := ExposeBasicBlocks(prog, gen)
	labels := blockLabels(blocks)

	found := false
	for _, l := range labels {
		if l == "rp.1" {
			found = true
		}
	}
	if !found {
		t.Errorf("blocks = %v, want a block labeled rp.1 for the return point's continuation", labels)
	}
}

// TestExposeBasicBlocksDropsTailNop ensures a tail-position Nop never
// survives into the flat block list (§4.24).
func TestExposeBasicBlocksDropsTailNop(t *testing.T) {
	gen := ir.NewGen()
	body := ir.Begin{Exprs: []ir.Node{
		ir.Nop{},
		ir.Funcall{Callee: ir.Symbol{Name: "f$0"}},
	}}
	blocks := ExposeBasicBlocks(ir.LowLetrec{Body: body}, gen)
	begin := blocks[0].Tail.(ir.Begin)
	for _, e := range begin.Exprs {
		if _, ok := e.(ir.Nop); ok {
			t.Errorf("tail-position Nop survived into the emitted block: %#v", begin)
		}
	}
}
