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

import "nanoc/ir"

// OptimizeJumps examines blocks in emission order and removes every
// jump whose target is the block immediately following it, lowering
// a two-armed conditional down to If1 when one of its arms is the
// one falling through (§4.25). The remaining arm's predicate is
// wrapped in a "not" when it was the taken-on-true arm that turned
// out to be the fallthrough, since If1 always jumps on true and falls
// through on false.
func OptimizeJumps(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		next := ""
		if i+1 < len(blocks) {
			next = blocks[i+1].Label
		}
		out[i] = Block{Label: b.Label, Tail: optimizeTail(b.Tail, next)}
	}
	return out
}

func optimizeTail(tail ir.Node, next string) ir.Node {
	begin, ok := tail.(ir.Begin)
	if !ok || len(begin.Exprs) == 0 {
		return tail
	}
	exprs := begin.Exprs
	last := exprs[len(exprs)-1]
	prefix := exprs[:len(exprs)-1]

	switch v := last.(type) {
	case ir.Funcall:
		if label, ok := calleeLabel(v); ok && label == next {
			return ir.Begin{Exprs: prefix}
		}
		return tail
	case ir.If:
		l1, l1ok := calleeLabel(v.Then)
		l2, l2ok := calleeLabel(v.Else)
		var replacement ir.Node
		switch {
		case l2ok && l2 == next:
			replacement = ir.If1{Pred: v.Pred, Then: v.Then}
		case l1ok && l1 == next:
			replacement = ir.If1{Pred: ir.Prim1{Op: "not", Arg: v.Pred}, Then: v.Else}
		default:
			return tail
		}
		return ir.Begin{Exprs: append(append([]ir.Node{}, prefix...), replacement)}
	default:
		return tail
	}
}

func calleeLabel(n ir.Node) (string, bool) {
	fc, ok := n.(ir.Funcall)
	if !ok {
		return "", false
	}
	sym, ok := fc.Callee.(ir.Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}
