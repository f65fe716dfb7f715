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

// wordSize mirrors compile/normalize's tagged-word size; regalloc only
// needs it to convert a frame-variable count into a byte displacement.
const wordSize = 8

// PreAssignFrame gives every name in spills not already in homes the
// lowest-indexed frame variable that conflicts with none of its
// already-assigned neighbors (§4.16, reused for §4.20's later
// iterations against whatever newly-spilled names select-instructions
// and the colorer produced).
func PreAssignFrame(spills *ir.NameSet, graph *ir.ConflictGraph, homes map[string]string) {
	for _, v := range spills.Sorted() {
		if _, ok := homes[v]; ok {
			continue
		}
		used := map[int]bool{}
		graph.Neighbors(v).ForEach(func(n string) {
			if h, ok := homes[n]; ok && ir.IsFv(h) {
				used[ir.FvIndex(h)] = true
			}
		})
		idx := 0
		for used[idx] {
			idx++
		}
		homes[v] = ir.FvName(idx)
	}
}

// FrameSize computes one plus the maximum frame-variable index among
// names in callLive that already have a frame home, the "current
// frame size" of §4.17 used both to size the rbp push around a
// non-tail call and, by AssignNewFrame, as the starting index handed
// to that call's own excess arguments.
func FrameSize(callLive *ir.NameSet, homes map[string]string) int {
	size := 0
	callLive.ForEach(func(v string) {
		if h, ok := homes[v]; ok && ir.IsFv(h) {
			if ir.FvIndex(h)+1 > size {
				size = ir.FvIndex(h) + 1
			}
		}
	})
	return size
}

// AssignNewFrame gives every NewFrames slot list consecutive frame
// variables starting at frameSize (§4.17). Since non-tail calls at the
// same nesting level never execute concurrently (the frame pointer is
// restored between them), every slot list safely reuses the same
// starting index; ResolveFrameMotion later corrects each reference
// down to the index relative to the pushed frame pointer.
func AssignNewFrame(frames [][]string, frameSize int, homes map[string]string) {
	for _, slots := range frames {
		for i, nfv := range slots {
			homes[nfv] = ir.FvName(frameSize + i)
		}
	}
}

// WrapFramePush walks body and, around the body of every ReturnPoint,
// inserts the rbp adjustment §4.17 requires so a non-tail call's own
// excess-argument frame variables land past the caller's existing
// frame usage. frameSize is this function's fixed, once-computed
// push amount (§4.17); ResolveFrameMotion (§4.23) later rewrites the
// frame-variable indices that fall inside the wrapped region back down
// by the same amount.
func WrapFramePush(n ir.Node, frameSize int) ir.Node {
	if frameSize == 0 {
		return n
	}
	switch v := n.(type) {
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = WrapFramePush(e, frameSize)
		}
		return ir.Begin{Exprs: exprs}
	case ir.If:
		return ir.If{Pred: v.Pred, Then: WrapFramePush(v.Then, frameSize), Else: WrapFramePush(v.Else, frameSize)}
	case ir.ReturnPoint:
		push := int64(frameSize * wordSize)
		wrapped := ir.Begin{Exprs: []ir.Node{
			ir.Set{Target: "rbp", Value: ir.Prim2{Op: "+", Arg1: ir.Symbol{Name: "rbp"}, Arg2: ir.Int64{Value: push}}},
			ResolveFrameMotion(v.Body, frameSize),
			ir.Set{Target: "rbp", Value: ir.Prim2{Op: "-", Arg1: ir.Symbol{Name: "rbp"}, Arg2: ir.Int64{Value: push}}},
		}}
		return ir.ReturnPoint{Label: v.Label, Body: wrapped}
	default:
		return n
	}
}

// ResolveFrameMotion rewrites every frame-variable reference inside a
// region whose rbp has been pushed forward by shift words, correcting
// its absolute index back down to the index relative to the new,
// pushed rbp (§4.23).
func ResolveFrameMotion(n ir.Node, shift int) ir.Node {
	switch v := n.(type) {
	case ir.Symbol:
		if ir.IsFv(v.Name) {
			return ir.Symbol{Name: ir.FvName(ir.FvIndex(v.Name) - shift)}
		}
		return v
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = ResolveFrameMotion(e, shift)
		}
		return ir.Begin{Exprs: exprs}
	case ir.If:
		return ir.If{Pred: ResolveFrameMotion(v.Pred, shift), Then: ResolveFrameMotion(v.Then, shift), Else: ResolveFrameMotion(v.Else, shift)}
	case ir.Set:
		return ir.Set{Target: resolveFvTarget(v.Target, shift), Value: ResolveFrameMotion(v.Value, shift)}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: ResolveFrameMotion(v.Arg, shift)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: ResolveFrameMotion(v.Arg1, shift), Arg2: ResolveFrameMotion(v.Arg2, shift)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: ResolveFrameMotion(v.Arg1, shift), Arg2: ResolveFrameMotion(v.Arg2, shift), Arg3: ResolveFrameMotion(v.Arg3, shift)}
	case ir.Mref:
		return ir.Mref{Base: ResolveFrameMotion(v.Base, shift), Offset: ResolveFrameMotion(v.Offset, shift)}
	case ir.Mset:
		return ir.Mset{Base: ResolveFrameMotion(v.Base, shift), Offset: ResolveFrameMotion(v.Offset, shift), Value: ResolveFrameMotion(v.Value, shift)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = ResolveFrameMotion(a, shift)
		}
		return ir.Funcall{Callee: ResolveFrameMotion(v.Callee, shift), Args: args}
	case ir.ReturnPoint:
		return ir.ReturnPoint{Label: v.Label, Body: ResolveFrameMotion(v.Body, shift)}
	default:
		return n
	}
}

func resolveFvTarget(name string, shift int) string {
	if ir.IsFv(name) {
		return ir.FvName(ir.FvIndex(name) - shift)
	}
	return name
}
