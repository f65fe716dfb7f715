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
package ir

// Variants introduced at the bridge to low IR (§4.11) and consumed by
// the allocation and code-generation stages. Source-IR's Let, Lambda,
// Letrec, If, Begin, Set, Prim1/2, Funcall, Symbol, Int64, Bool, Nop
// all remain in use; LowLambda and LowLetrec replace Lambda/Letrec
// once every binding is known to be a labeled code block.

// LowLambda is a single labeled code block: what used to be a Lambda
// bound by name in a Letrec, now addressed by its label rather than a
// variable.
type LowLambda struct {
	baseNode
	Label   string
	Formals []string
	Body    Node
}

// LowLetrec binds labels (not variables) to LowLambda blocks; its
// Body is the program's entry tail.
type LowLetrec struct {
	baseNode
	Procs []LowLambda
	Body  Node
}

// If1 is a one-armed conditional: the predicate, taken when false,
// falls through. Produced by optimize-jumps (§4.25) from an If whose
// other arm already falls through.
type If1 struct {
	baseNode
	Pred Node
	Then Node
}

type Ulocals struct {
	baseNode
	Vars *NameSet
	Body Node
}

type Spills struct {
	baseNode
	Vars *NameSet
	Body Node
}

// Locate records the physical home (register name or frame-variable
// name) chosen for each user variable. Body still refers to variables
// by Symbol until finalize-locations (§4.22) substitutes them.
type Locate struct {
	baseNode
	Homes map[string]string
	Body  Node
}

type FrameConflict struct {
	baseNode
	Graph *ConflictGraph
	Body  Node
}

type RegisterConflict struct {
	baseNode
	Graph *ConflictGraph
	Body  Node
}

// NewFrames is the set of non-parameter-register argument lists that
// need freshly allocated frame slots past the current frame, one list
// per non-tail call site.
type NewFrames struct {
	baseNode
	Frames [][]string
	Body   Node
}

type CallLive struct {
	baseNode
	Vars *NameSet
	Body Node
}

// ReturnPoint marks where control resumes after a non-tail call; Label
// is the return-point's own label ("rp.L" family), Body is the
// call-and-continuation sequence.
type ReturnPoint struct {
	baseNode
	Label string
	Body  Node
}
