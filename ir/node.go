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

// Package ir defines the one recursive tree type every pass of the
// pipeline reads and rewrites, from the reader's raw output down to
// the block list handed to the assembler. There is no separate type
// per pass: each pass narrows the set of variants it expects to see
// and panics (via InvariantViolation) on anything a prior pass should already
// have eliminated.
package ir

// Node is implemented by every tree variant, source-IR and low-IR
// alike. A type switch over Node is how every pass is written; there
// is no visitor interface because the set of passes, unlike the set
// of variants, keeps changing.
type Node interface {
	isNode()
}

type baseNode struct{}

func (baseNode) isNode() {}

// ---- source IR ----------------------------------------------------

type Int64 struct {
	baseNode
	Value int64
}

type Bool struct {
	baseNode
	Value bool
}

type EmptyList struct{ baseNode }

type Void struct{ baseNode }

// Symbol names a reference: a user variable, a label, or (after
// finalize-frame-locations) a register or frame variable. Which one
// it is, is determined by its name shape (see names.go).
type Symbol struct {
	baseNode
	Name string
}

// Quote wraps an immediate datum parsed from a 'literal. Unlike the
// rest of the tree, the payload is Datum, not Node: quoted data is
// never itself evaluated or rewritten by a pass.
type Quote struct {
	baseNode
	Value Datum
}

type If struct {
	baseNode
	Pred, Then, Else Node
}

type Begin struct {
	baseNode
	Exprs []Node
}

type Set struct {
	baseNode
	Target string
	Value  Node
}

type Binding struct {
	Name  string
	Value Node
}

type Let struct {
	baseNode
	Bindings []Binding
	Body     Node
}

type Letrec struct {
	baseNode
	Bindings []Binding
	Body     Node
}

type Lambda struct {
	baseNode
	Formals []string
	Body    Node
}

type Prim1 struct {
	baseNode
	Op  string
	Arg Node
}

type Prim2 struct {
	baseNode
	Op         string
	Arg1, Arg2 Node
}

type Prim3 struct {
	baseNode
	Op               string
	Arg1, Arg2, Arg3 Node
}

type Funcall struct {
	baseNode
	Callee Node
	Args   []Node
}

type Nop struct{ baseNode }

// ---- extensions used from §4.5 onward ------------------------------

type Free struct {
	baseNode
	Vars []string
	Body Node
}

type Bindfree struct {
	baseNode
	Vars []string
	Body Node
}

// ClosureTuple is one (closure-pointer, code-label, free-vars) entry
// produced by convert-closures (§4.6).
type ClosureTuple struct {
	CP        string
	CodeLabel string
	FreeVars  []string
}

type Closures struct {
	baseNode
	Tuples []ClosureTuple
	Body   Node
}

type Alloc struct {
	baseNode
	Size Node
}

type Mref struct {
	baseNode
	Base, Offset Node
}

type Mset struct {
	baseNode
	Base, Offset, Value Node
}

type Locals struct {
	baseNode
	Vars *NameSet
	Body Node
}
