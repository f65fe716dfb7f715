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
package regalloc

import "nanoc/ir"

var commutative = map[string]bool{"+": true, "*": true, "=": true, "logand": true, "logor": true}

var invertRelop = map[string]string{"<": ">", "<=": ">=", ">": "<", ">=": "<=", "=": "="}

// SelectInstructions reshapes every Set and comparison so at most one
// operand is a memory reference (a frame variable already assigned by
// an earlier iteration) and a binary op's destination equals one of
// its sources, introducing unspillable temporaries where the target
// machine has no instruction shape for the original form (§4.18).
// Every temporary it introduces is added to ulocals.
func SelectInstructions(n ir.Node, gen *ir.Gen, ulocals *ir.NameSet) ir.Node {
	switch v := n.(type) {
	case ir.Begin:
		exprs := make([]ir.Node, 0, len(v.Exprs))
		for _, e := range v.Exprs {
			exprs = append(exprs, selectStmt(e, gen, ulocals)...)
		}
		return ir.Begin{Exprs: exprs}
	case ir.If:
		return ir.If{Pred: selectPred(v.Pred, gen, ulocals), Then: SelectInstructions(v.Then, gen, ulocals), Else: SelectInstructions(v.Else, gen, ulocals)}
	case ir.ReturnPoint:
		return ir.ReturnPoint{Label: v.Label, Body: SelectInstructions(v.Body, gen, ulocals)}
	case ir.Set:
		stmts := selectStmt(v, gen, ulocals)
		if len(stmts) == 1 {
			return stmts[0]
		}
		return ir.Begin{Exprs: stmts}
	default:
		return n
	}
}

func selectStmt(n ir.Node, gen *ir.Gen, ulocals *ir.NameSet) []ir.Node {
	switch v := n.(type) {
	case ir.Set:
		return selectSet(v, gen, ulocals)
	case ir.If:
		return []ir.Node{ir.If{Pred: selectPred(v.Pred, gen, ulocals), Then: SelectInstructions(v.Then, gen, ulocals), Else: SelectInstructions(v.Else, gen, ulocals)}}
	case ir.ReturnPoint:
		return []ir.Node{ir.ReturnPoint{Label: v.Label, Body: SelectInstructions(v.Body, gen, ulocals)}}
	case ir.Begin:
		return []ir.Node{SelectInstructions(v, gen, ulocals)}
	default:
		return []ir.Node{n}
	}
}

func isFvSym(n ir.Node) bool {
	s, ok := n.(ir.Symbol)
	return ok && ir.IsFv(s.Name)
}

func isImm(n ir.Node) bool {
	_, ok := n.(ir.Int64)
	return ok
}

// stage routes a frame/frame or label/frame move through a fresh
// unspillable register-only temporary.
func stage(n ir.Node, gen *ir.Gen, ulocals *ir.NameSet, out *[]ir.Node) ir.Node {
	tmp := gen.Temp()
	ulocals.Add(tmp)
	*out = append(*out, ir.Set{Target: tmp, Value: n})
	return ir.Symbol{Name: tmp}
}

func selectSet(v ir.Set, gen *ir.Gen, ulocals *ir.NameSet) []ir.Node {
	var out []ir.Node
	dst := v.Target
	switch rhs := v.Value.(type) {
	case ir.Mref:
		base, offset := rhs.Base, rhs.Offset
		if isFvSym(base) {
			base = stage(base, gen, ulocals, &out)
		}
		if isFvSym(offset) {
			offset = stage(offset, gen, ulocals, &out)
		}
		out = append(out, ir.Set{Target: dst, Value: ir.Mref{Base: base, Offset: offset}})
		return out
	case ir.Mset:
		base, offset, val := rhs.Base, rhs.Offset, rhs.Value
		if isFvSym(base) {
			base = stage(base, gen, ulocals, &out)
		}
		if isFvSym(offset) {
			offset = stage(offset, gen, ulocals, &out)
		}
		out = append(out, ir.Mset{Base: base, Offset: offset, Value: val})
		return out
	case ir.Prim2:
		return selectBinopSet(dst, rhs, gen, ulocals)
	case ir.Symbol:
		if ir.IsFv(dst) && ir.IsFv(rhs.Name) {
			tmp := stage(rhs, gen, ulocals, &out)
			out = append(out, ir.Set{Target: dst, Value: tmp})
			return out
		}
		if ir.IsFv(dst) && ir.IsLabel(rhs.Name) {
			tmp := stage(rhs, gen, ulocals, &out)
			out = append(out, ir.Set{Target: dst, Value: tmp})
			return out
		}
		out = append(out, v)
		return out
	default:
		out = append(out, v)
		return out
	}
}

// selectBinopSet handles Set(a, Op(b,c)): the destination must equal
// one of the sources in the instruction finally selected.
func selectBinopSet(dst string, rhs ir.Prim2, gen *ir.Gen, ulocals *ir.NameSet) []ir.Node {
	var out []ir.Node
	b, c := rhs.Arg1, rhs.Arg2

	if isFvSym(b) && isFvSym(c) {
		b = stage(b, gen, ulocals, &out)
	}
	if isImm(b) && isFvSym(c) && rhs.Op == "*" {
		c = stage(c, gen, ulocals, &out)
	}

	bName, bIsSym := symName(b)
	cName, cIsSym := symName(c)

	switch {
	case bIsSym && bName == dst:
		out = append(out, ir.Set{Target: dst, Value: ir.Prim2{Op: rhs.Op, Arg1: b, Arg2: c}})
	case commutative[rhs.Op] && cIsSym && cName == dst:
		out = append(out, ir.Set{Target: dst, Value: ir.Prim2{Op: rhs.Op, Arg1: c, Arg2: b}})
	default:
		out = append(out, ir.Set{Target: dst, Value: b})
		out = append(out, ir.Set{Target: dst, Value: ir.Prim2{Op: rhs.Op, Arg1: ir.Symbol{Name: dst}, Arg2: c}})
	}
	return out
}

func symName(n ir.Node) (string, bool) {
	s, ok := n.(ir.Symbol)
	if !ok {
		return "", false
	}
	return s.Name, true
}

// selectPred reshapes a comparison used as an If predicate: an
// immediate on the left is swapped to the right with its relation
// inverted, since cmpq addressing needs the variable operand first.
func selectPred(n ir.Node, gen *ir.Gen, ulocals *ir.NameSet) ir.Node {
	prim, ok := n.(ir.Prim2)
	if !ok {
		return n
	}
	op, a, b := prim.Op, prim.Arg1, prim.Arg2
	if inv, ok := invertRelop[op]; ok && isImm(a) && !isImm(b) {
		op, a, b = inv, b, a
	}
	return ir.Prim2{Op: op, Arg1: a, Arg2: b}
}
