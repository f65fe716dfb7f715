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

// Package regalloc holds §4.15-4.23: the iterated liveness, conflict
// graph, and simplify-select coloring loop that gives every user
// variable a register or frame-variable home, plus the instruction
// reshaping (§4.18) and frame-pointer bookkeeping (§4.17, §4.23) that
// loop needs to stay correct across iterations.
package regalloc

import "nanoc/ir"

// BuildConflictGraph runs the single backward liveness walk shared by
// uncover-frame-conflict (§4.15) and uncover-register-conflict (§4.19):
// the rules differ only in which names later get assigned a home, not
// in how liveness or conflicts are computed. callLive accumulates
// every name live at a ReturnPoint, which is exactly how §4.15 decides
// which user variables must be frame-homed.
func BuildConflictGraph(body ir.Node) (*ir.ConflictGraph, *ir.NameSet) {
	g := ir.NewConflictGraph()
	callLive := ir.NewNameSet()
	walkLiveness(body, ir.NewNameSet(), g, callLive)
	return g, callLive
}

func walkLiveness(n ir.Node, liveOut *ir.NameSet, g *ir.ConflictGraph, callLive *ir.NameSet) *ir.NameSet {
	switch v := n.(type) {
	case ir.Begin:
		cur := liveOut
		for i := len(v.Exprs) - 1; i >= 0; i-- {
			cur = walkLiveness(v.Exprs[i], cur, g, callLive)
		}
		return cur
	case ir.If:
		thenLive := walkLiveness(v.Then, liveOut, g, callLive)
		elseLive := walkLiveness(v.Else, liveOut, g, callLive)
		merged := thenLive.Clone()
		merged.Union(elseLive)
		merged.Union(refs(v.Pred))
		return merged
	case ir.Set:
		out := liveOut.Clone()
		out.Remove(v.Target)
		g.AddVertex(v.Target)
		moveSrc := ""
		if sym, ok := v.Value.(ir.Symbol); ok {
			moveSrc = sym.Name
		}
		out.ForEach(func(other string) {
			if other == moveSrc {
				return
			}
			g.AddEdge(v.Target, other)
		})
		out.Union(refs(v.Value))
		return out
	case ir.ReturnPoint:
		callLive.Union(liveOut)
		return walkLiveness(v.Body, ir.NewNameSet(), g, callLive)
	case ir.Funcall:
		out := refs(v.Callee)
		for _, a := range v.Args {
			out.Union(refs(a))
		}
		return out
	case ir.Locals:
		return walkLiveness(v.Body, liveOut, g, callLive)
	default:
		return liveOut
	}
}

// refs returns the names (variables or registers, never labels) a
// value-position expression reads.
func refs(n ir.Node) *ir.NameSet {
	out := ir.NewNameSet()
	switch v := n.(type) {
	case ir.Symbol:
		if !ir.IsLabel(v.Name) {
			out.Add(v.Name)
		}
	case ir.Prim1:
		out.Union(refs(v.Arg))
	case ir.Prim2:
		out.Union(refs(v.Arg1))
		out.Union(refs(v.Arg2))
	case ir.Prim3:
		out.Union(refs(v.Arg1))
		out.Union(refs(v.Arg2))
		out.Union(refs(v.Arg3))
	case ir.Mref:
		out.Union(refs(v.Base))
		out.Union(refs(v.Offset))
	case ir.Mset:
		out.Union(refs(v.Base))
		out.Union(refs(v.Offset))
		out.Union(refs(v.Value))
	case ir.Alloc:
		out.Union(refs(v.Size))
	}
	return out
}
