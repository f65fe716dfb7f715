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

// MainLabel names the block _scheme_entry falls into once the
// trampoline has set up rdx/rbp/r15 (§4.26); it is the program's own
// entry tail, exposed exactly like any lambda's body.
const MainLabel = "main$"

// Block is one entry of the flat list expose-basic-blocks (§4.24)
// produces: a label and the straight-line tail that runs when control
// reaches it. Tail always ends in either a Funcall (unconditional
// jump or call) or an If whose branches are themselves Funcalls to
// other blocks' labels.
type Block struct {
	Label string
	Tail  ir.Node
}

// ExposeBasicBlocks flattens every remaining If into a pair of freshly
// labeled successor blocks and a conditional jump between them,
// flattens nested Begins, drops tail-position Nops, and turns every
// ReturnPoint into a call block followed by a fresh block at the
// return label holding the continuation (§4.24).
func ExposeBasicBlocks(prog ir.LowLetrec, gen *ir.Gen) []Block {
	var out []Block
	emitFrom(MainLabel, nil, linearize(prog.Body), 0, nil, gen, &out)
	for _, p := range prog.Procs {
		emitFrom(p.Label, nil, linearize(p.Body), 0, nil, gen, &out)
	}
	return out
}

// linearize flattens nested Begins into one flat statement list;
// every other node is left as a single list element.
func linearize(n ir.Node) []ir.Node {
	if b, ok := n.(ir.Begin); ok {
		var out []ir.Node
		for _, e := range b.Exprs {
			out = append(out, linearize(e)...)
		}
		return out
	}
	return []ir.Node{n}
}

func jumpTo(label string) ir.Node {
	return ir.Funcall{Callee: ir.Symbol{Name: label}}
}

// emitFrom walks items starting at i, accumulating ordinary effects
// into stmts for the block named label, until it hits something that
// ends a block: a Funcall (the block's own tail), an If (split into
// two successor blocks plus a conditional jump), or a ReturnPoint (the
// call itself ends this block; whatever follows starts a fresh block
// at the return-point's label). join, when non-nil, is the label an
// effect-position branch must jump to once it runs out of statements
// with no terminal node of its own (§4.24's "common join label").
func emitFrom(label string, stmts []ir.Node, items []ir.Node, i int, join *string, gen *ir.Gen, out *[]Block) {
	for ; i < len(items); i++ {
		switch v := items[i].(type) {
		case ir.Nop:
			continue
		case ir.ReturnPoint:
			body := linearize(v.Body)
			emitFrom(label, stmts, body, 0, nil, gen, out)
			emitFrom(v.Label, nil, items, i+1, join, gen, out)
			return
		case ir.If:
			rest := items[i+1:]
			branchJoin := join
			var jl string
			if len(rest) > 0 {
				jl = gen.Label()
				branchJoin = &jl
			}
			l1, l2 := gen.Label(), gen.Label()
			tail := ir.If{Pred: v.Pred, Then: jumpTo(l1), Else: jumpTo(l2)}
			*out = append(*out, Block{Label: label, Tail: ir.Begin{Exprs: append(stmts, tail)}})
			emitFrom(l1, nil, linearize(v.Then), 0, branchJoin, gen, out)
			emitFrom(l2, nil, linearize(v.Else), 0, branchJoin, gen, out)
			if len(rest) > 0 {
				emitFrom(jl, nil, rest, 0, join, gen, out)
			}
			return
		case ir.Funcall:
			*out = append(*out, Block{Label: label, Tail: ir.Begin{Exprs: append(stmts, v)}})
			return
		default:
			stmts = append(stmts, items[i])
		}
	}
	if join != nil {
		*out = append(*out, Block{Label: label, Tail: ir.Begin{Exprs: append(stmts, jumpTo(*join))}})
		return
	}
	*out = append(*out, Block{Label: label, Tail: ir.Begin{Exprs: stmts}})
}
