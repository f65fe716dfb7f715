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

import (
	"nanoc/compile/codegen"
	"nanoc/ir"
)

// maxEverybodyHomeIterations bounds the uncover-register-conflict /
// assign-registers / assign-frame loop (§4.19-4.21). The conflict
// graph shrinks by at least one vertex (the new spill) every time it
// fails to color, so a correctly built allocator always converges
// long before this; it exists only to fail loudly instead of hanging
// if some future pass change breaks that guarantee.
const maxEverybodyHomeIterations = 64

func registerNames() []string {
	regs := codegen.AllocatableRegisters()
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.Name
	}
	return out
}

// AllocateProgram runs §4.15-4.23 over every lambda body and the
// program's entry body, giving every user variable and compiler
// temporary a final register or frame-variable home and discharging
// the NewFrames wrapper callconv produced (§4.14) into concrete
// frame-pointer pushes around each non-tail call.
func AllocateProgram(prog ir.NewFrames, gen *ir.Gen) ir.Node {
	top := prog.Body.(ir.Letrec)
	procs := make([]ir.LowLambda, len(top.Bindings))
	for i, b := range top.Bindings {
		lam := b.Value.(ir.Lambda)
		locals := lam.Body.(ir.Locals)
		final := AllocateFunction(locals, prog.Frames, gen)
		procs[i] = ir.LowLambda{Label: b.Name, Formals: lam.Formals, Body: final}
	}
	mainLocals := top.Body.(ir.Locals)
	mainFinal := AllocateFunction(mainLocals, prog.Frames, gen)
	return ir.LowLetrec{Procs: procs, Body: mainFinal}
}

// AllocateFunction runs the everybody-home loop for a single function
// body (§4.15-4.23): frame-conflict first locates every call-live user
// variable, assign-new-frame gives this function's own excess call
// arguments their slots, and then register-conflict plus simplify-
// select coloring iterates, feeding back any spill as a fresh frame
// location, until every remaining candidate colors cleanly.
func AllocateFunction(locals ir.Locals, allFrames [][]string, gen *ir.Gen) ir.Node {
	body := locals.Body
	myFrames := filterFrames(allFrames, body)

	graph, callLive := BuildConflictGraph(body)
	homes := map[string]string{}
	spills := callLiveUserVars(callLive, locals.Vars)
	PreAssignFrame(spills, graph, homes)

	frameSize := FrameSize(callLive, homes)
	AssignNewFrame(myFrames, frameSize, homes)

	remaining := locals.Vars.Clone()
	spills.ForEach(func(v string) { remaining.Remove(v) })

	reshaped := body
	converged := false
	for iter := 0; iter < maxEverybodyHomeIterations; iter++ {
		substituted := substituteHomes(body, homes)
		ulocals := ir.NewNameSet()
		reshaped = SelectInstructions(substituted, gen, ulocals)

		regGraph, _ := BuildConflictGraph(reshaped)
		candidates := remaining.Clone()
		candidates.Union(ulocals)
		result := Color(regGraph, candidates, ulocals, registerNames())

		newSpill := false
		result.Spills.ForEach(func(v string) {
			if _, already := homes[v]; !already {
				newSpill = true
			}
		})
		if !newSpill {
			for name, home := range result.Homes {
				if _, already := homes[name]; !already {
					homes[name] = home
				}
			}
			converged = true
			break
		}

		frameGraph, _ := BuildConflictGraph(substituted)
		PreAssignFrame(result.Spills, frameGraph, homes)
		result.Spills.ForEach(func(v string) { remaining.Remove(v) })
	}
	if !converged {
		ir.AllocError("register allocation did not converge")
	}

	final := dropSelfMoves(substituteHomes(reshaped, homes))
	return WrapFramePush(final, frameSize)
}

// callLiveUserVars restricts callLive to names this allocator is
// actually responsible for homing: registers (fixed or already
// parameter-assigned) are never spilled (§4.15).
func callLiveUserVars(callLive, locals *ir.NameSet) *ir.NameSet {
	out := ir.NewNameSet()
	callLive.ForEach(func(v string) {
		if ir.IsReg(v) {
			return
		}
		if locals.Contains(v) {
			out.Add(v)
		}
	})
	return out
}

// filterFrames keeps only the excess-argument slot lists callconv
// produced whose frame-variable placeholders actually occur in body:
// every "nfv.N" name is unique to the one call site (and hence the
// one function) that created it, so this partition is exact, not a
// heuristic.
func filterFrames(frames [][]string, body ir.Node) [][]string {
	present := ir.NewNameSet()
	collectNames(body, present)
	var out [][]string
	for _, slots := range frames {
		if len(slots) > 0 && present.Contains(slots[0]) {
			out = append(out, slots)
		}
	}
	return out
}

func collectNames(n ir.Node, out *ir.NameSet) {
	switch v := n.(type) {
	case ir.Symbol:
		out.Add(v.Name)
	case ir.Set:
		out.Add(v.Target)
		collectNames(v.Value, out)
	case ir.Begin:
		for _, e := range v.Exprs {
			collectNames(e, out)
		}
	case ir.If:
		collectNames(v.Pred, out)
		collectNames(v.Then, out)
		collectNames(v.Else, out)
	case ir.ReturnPoint:
		collectNames(v.Body, out)
	case ir.Funcall:
		collectNames(v.Callee, out)
		for _, a := range v.Args {
			collectNames(a, out)
		}
	case ir.Prim1:
		collectNames(v.Arg, out)
	case ir.Prim2:
		collectNames(v.Arg1, out)
		collectNames(v.Arg2, out)
	case ir.Prim3:
		collectNames(v.Arg1, out)
		collectNames(v.Arg2, out)
		collectNames(v.Arg3, out)
	case ir.Mref:
		collectNames(v.Base, out)
		collectNames(v.Offset, out)
	case ir.Mset:
		collectNames(v.Base, out)
		collectNames(v.Offset, out)
		collectNames(v.Value, out)
	case ir.Alloc:
		collectNames(v.Size, out)
	}
}

// substituteHomes replaces every name with a decided home (frame
// variable, register, or another name already wearing its final
// shape) throughout n. Names with no entry in homes are left exactly
// as written, which is what lets this run both mid-loop (only spills
// located so far) and at the very end (everything located).
func substituteHomes(n ir.Node, homes map[string]string) ir.Node {
	rename := func(name string) string {
		if h, ok := homes[name]; ok {
			return h
		}
		return name
	}
	switch v := n.(type) {
	case ir.Symbol:
		return ir.Symbol{Name: rename(v.Name)}
	case ir.Set:
		return ir.Set{Target: rename(v.Target), Value: substituteHomes(v.Value, homes)}
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = substituteHomes(e, homes)
		}
		return ir.Begin{Exprs: exprs}
	case ir.If:
		return ir.If{Pred: substituteHomes(v.Pred, homes), Then: substituteHomes(v.Then, homes), Else: substituteHomes(v.Else, homes)}
	case ir.ReturnPoint:
		return ir.ReturnPoint{Label: v.Label, Body: substituteHomes(v.Body, homes)}
	case ir.Funcall:
		args := make([]ir.Node, len(v.Args))
		for i, a := range v.Args {
			args[i] = substituteHomes(a, homes)
		}
		return ir.Funcall{Callee: substituteHomes(v.Callee, homes), Args: args}
	case ir.Prim1:
		return ir.Prim1{Op: v.Op, Arg: substituteHomes(v.Arg, homes)}
	case ir.Prim2:
		return ir.Prim2{Op: v.Op, Arg1: substituteHomes(v.Arg1, homes), Arg2: substituteHomes(v.Arg2, homes)}
	case ir.Prim3:
		return ir.Prim3{Op: v.Op, Arg1: substituteHomes(v.Arg1, homes), Arg2: substituteHomes(v.Arg2, homes), Arg3: substituteHomes(v.Arg3, homes)}
	case ir.Mref:
		return ir.Mref{Base: substituteHomes(v.Base, homes), Offset: substituteHomes(v.Offset, homes)}
	case ir.Mset:
		return ir.Mset{Base: substituteHomes(v.Base, homes), Offset: substituteHomes(v.Offset, homes), Value: substituteHomes(v.Value, homes)}
	case ir.Alloc:
		return ir.Alloc{Size: substituteHomes(v.Size, homes)}
	default:
		return n
	}
}

// dropSelfMoves collapses a Set whose target and source resolved to
// the same final home into a Nop (§4.22): once every variable has a
// home, a move that turns out to be a register or frame slot assigned
// to itself has no effect left to perform.
func dropSelfMoves(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.Set:
		if sym, ok := v.Value.(ir.Symbol); ok && sym.Name == v.Target {
			return ir.Nop{}
		}
		return v
	case ir.Begin:
		exprs := make([]ir.Node, len(v.Exprs))
		for i, e := range v.Exprs {
			exprs[i] = dropSelfMoves(e)
		}
		return ir.Begin{Exprs: exprs}
	case ir.If:
		return ir.If{Pred: v.Pred, Then: dropSelfMoves(v.Then), Else: dropSelfMoves(v.Else)}
	case ir.ReturnPoint:
		return ir.ReturnPoint{Label: v.Label, Body: dropSelfMoves(v.Body)}
	default:
		return v
	}
}
