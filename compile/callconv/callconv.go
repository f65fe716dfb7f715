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

// Package callconv holds §4.14: the pass that turns a body with plain
// Funcalls into one where every call site marshals its own arguments,
// every entry marshals its own formals, and the return address is
// threaded explicitly through named return points, leaving every
// remaining jump in the tree fully imperative.
package callconv

import (
	"nanoc/compile/codegen"
	"nanoc/ir"
)

const mainReturnPoint = "rp.main"

// ImposeCallingConvention rewrites every lambda body (and the
// top-level body) in place of its Letrec, threading argument and
// return-address marshaling through every call site, and collects the
// frame-variable lists assign-new-frame (§4.17) will need into a
// single NewFrames wrapper around the whole program (§4.14).
func ImposeCallingConvention(top ir.Letrec, gen *ir.Gen) ir.Node {
	var frames [][]string
	bindings := make([]ir.Binding, len(top.Bindings))
	for i, b := range top.Bindings {
		lam := b.Value.(ir.Lambda)
		bindings[i] = ir.Binding{Name: b.Name, Value: imposeLambda(b.Name, lam, gen, &frames)}
	}
	mainLocals := top.Body.(ir.Locals)
	mainPrologue := []ir.Node{ir.Set{Target: mainReturnPoint, Value: ir.Symbol{Name: "r15"}}}
	mainBody := imposeBody(mainLocals.Body, true, mainReturnPoint, gen, &frames)
	main := ir.Locals{Vars: mainLocals.Vars, Body: ir.Begin{Exprs: append(mainPrologue, mainBody)}}

	result := ir.Node(ir.Letrec{Bindings: bindings, Body: main})
	return ir.NewFrames{Frames: frames, Body: result}
}

func imposeLambda(label string, lam ir.Lambda, gen *ir.Gen, frames *[][]string) ir.Node {
	locals := lam.Body.(ir.Locals)
	rp := ir.ReturnPointLabel(label)
	prologue := []ir.Node{ir.Set{Target: rp, Value: ir.Symbol{Name: "r15"}}}
	for i, formal := range lam.Formals {
		prologue = append(prologue, ir.Set{Target: formal, Value: ir.Symbol{Name: paramLocation(i)}})
	}
	body := imposeBody(locals.Body, true, rp, gen, frames)
	newLocals := ir.Locals{Vars: locals.Vars, Body: ir.Begin{Exprs: append(prologue, body)}}
	return ir.Lambda{Formals: lam.Formals, Body: newLocals}
}

func paramLocation(i int) string {
	if i < len(codegen.ParamRegs) {
		return codegen.ParamRegs[i].Name
	}
	return ir.FvName(i - len(codegen.ParamRegs))
}

// imposeBody rewrites n, known to be in tail position when tail is
// true (so a trailing value must be handed back via rp) or otherwise
// in effect/non-tail position (so a Funcall there is a non-tail call
// that must survive past its own return).
func imposeBody(n ir.Node, tail bool, rp string, gen *ir.Gen, frames *[][]string) ir.Node {
	switch v := n.(type) {
	case ir.Begin:
		var out []ir.Node
		last := len(v.Exprs) - 1
		for i, e := range v.Exprs {
			if set, ok := e.(ir.Set); ok {
				if fc, ok := set.Value.(ir.Funcall); ok {
					rpNode, cont := nonTailCall(set.Target, fc, gen, frames)
					out = append(out, rpNode, cont)
					continue
				}
			}
			out = append(out, imposeBody(e, tail && i == last, rp, gen, frames))
		}
		return ir.Begin{Exprs: out}
	case ir.If:
		return ir.If{Pred: v.Pred, Then: imposeBody(v.Then, tail, rp, gen, frames), Else: imposeBody(v.Else, tail, rp, gen, frames)}
	case ir.Funcall:
		if tail {
			return tailCall(v, rp, gen, frames)
		}
		tmp := gen.Temp()
		rpNode, cont := nonTailCall(tmp, v, gen, frames)
		return ir.Begin{Exprs: []ir.Node{rpNode, cont}}
	case ir.Set:
		if fc, ok := v.Value.(ir.Funcall); ok {
			rpNode, cont := nonTailCall(v.Target, fc, gen, frames)
			return ir.Begin{Exprs: []ir.Node{rpNode, cont}}
		}
		return v
	default:
		if !tail {
			return n
		}
		return ir.Begin{Exprs: []ir.Node{
			ir.Set{Target: "rax", Value: n},
			ir.Funcall{Callee: ir.Symbol{Name: rp}, Args: []ir.Node{ir.Symbol{Name: "rbp"}, ir.Symbol{Name: "rax"}, ir.Symbol{Name: "rdx"}}},
		}}
	}
}

// tailCall marshals fc's arguments into their parameter locations,
// forwards the caller's own return address, and jumps (§4.14).
func tailCall(fc ir.Funcall, rp string, gen *ir.Gen, frames *[][]string) ir.Node {
	locs, sets, extra := marshalArgs(fc.Args, gen)
	if len(extra) > 0 {
		*frames = append(*frames, extra)
	}
	exprs := append(sets, ir.Set{Target: "r15", Value: ir.Symbol{Name: rp}})
	exprs = append(exprs, ir.Funcall{Callee: fc.Callee, Args: liveLocations(locs)})
	return ir.Begin{Exprs: exprs}
}

// nonTailCall builds the ReturnPoint wrapping a non-tail call and the
// statement that picks the result up out of rax once control resumes
// at that return point (§4.14).
func nonTailCall(target string, fc ir.Funcall, gen *ir.Gen, frames *[][]string) (ir.Node, ir.Node) {
	locs, sets, extra := marshalArgs(fc.Args, gen)
	if len(extra) > 0 {
		*frames = append(*frames, extra)
	}
	label := gen.Label()
	exprs := append(sets, ir.Set{Target: "r15", Value: ir.Symbol{Name: label}})
	exprs = append(exprs, ir.Funcall{Callee: fc.Callee, Args: liveLocations(locs)})
	rpNode := ir.ReturnPoint{Label: label, Body: ir.Begin{Exprs: exprs}}
	cont := ir.Set{Target: target, Value: ir.Symbol{Name: "rax"}}
	return rpNode, cont
}

// marshalArgs assigns each argument its parameter location (the first
// two go to registers, the rest to freshly named frame slots) and
// returns the Sets that perform the move, the locations used (for the
// call's live-set), and the fresh frame-variable names that need a
// slot from assign-new-frame.
func marshalArgs(args []ir.Node, gen *ir.Gen) (locs []string, sets []ir.Node, extra []string) {
	for i, a := range args {
		var loc string
		if i < len(codegen.ParamRegs) {
			loc = codegen.ParamRegs[i].Name
		} else {
			loc = gen.NewFrameVar()
			extra = append(extra, loc)
		}
		sets = append(sets, ir.Set{Target: loc, Value: a})
		locs = append(locs, loc)
	}
	return locs, sets, extra
}

func liveLocations(locs []string) []ir.Node {
	args := make([]ir.Node, 0, len(locs)+2)
	for _, l := range locs {
		args = append(args, ir.Symbol{Name: l})
	}
	args = append(args, ir.Symbol{Name: "rbp"}, ir.Symbol{Name: "rdx"})
	return args
}
