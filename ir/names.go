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

import (
	"fmt"
	"strconv"
	"strings"
)

// Gen is the single fresh-name source every pass shares. One counter,
// incremented exactly once per generated name, starting at 5000 to
// stay clear of any name a reasonably sized source program uses.
type Gen struct {
	counter int
}

func NewGen() *Gen {
	return &Gen{counter: 5000}
}

func (g *Gen) next() int {
	n := g.counter
	g.counter++
	return n
}

// UVar produces a user variable derived from hint, e.g. hint "x" gives
// "x.5000". The dot is what marks it as a user variable (see IsUvar).
func (g *Gen) UVar(hint string) string {
	return fmt.Sprintf("%s.%d", hint, g.next())
}

// Temp produces an internal user-variable temporary with the fixed
// "t." prefix (§5), used where no more specific hint applies (e.g.
// unspillables introduced by select-instructions).
func (g *Gen) Temp() string {
	return fmt.Sprintf("t.%d", g.next())
}

// NewFrameVar produces an "nfv." placeholder for an excess non-tail
// call argument, later replaced by a concrete "fvN" by assign-new-frame.
func (g *Gen) NewFrameVar() string {
	return fmt.Sprintf("nfv.%d", g.next())
}

// Anon names a lifted anonymous lambda (§4.3).
func (g *Gen) Anon() string {
	return fmt.Sprintf("anon.%d", g.next())
}

// Label produces a fresh internal label, e.g. for expose-basic-blocks
// join points. Labels always contain a dollar sign (see IsLabel).
func (g *Gen) Label() string {
	return fmt.Sprintf("tmp$%d", g.next())
}

// CodeLabel derives a lambda's code label from its bound name by
// substituting the user-variable dot for a label dollar, per §4.6.
func CodeLabel(boundName string) string {
	return strings.Replace(boundName, ".", "$", 1)
}

// ReturnPointLabel derives a return-point label "rp.L" where L is the
// label the call returns into, per §4.14.
func ReturnPointLabel(label string) string {
	return "rp." + label
}

// ---- name-shape predicates (§3 "Names and their conventions") -----

// IsUvar reports whether name has the shape of a user variable: at
// least one dot, with non-empty text on both sides.
func IsUvar(name string) bool {
	i := strings.IndexByte(name, '.')
	return i > 0 && i < len(name)-1
}

// IsLabel reports whether name has the shape of a label: at least one
// dollar sign, with non-empty text on both sides.
func IsLabel(name string) bool {
	i := strings.IndexByte(name, '$')
	return i > 0 && i < len(name)-1
}

// IsFv reports whether name is a frame variable "fvN".
func IsFv(name string) bool {
	if !strings.HasPrefix(name, "fv") {
		return false
	}
	_, err := strconv.Atoi(name[2:])
	return err == nil
}

// FvIndex extracts N from a frame-variable name "fvN". Panics (a
// compiler bug, not a user error) if name is not a frame variable.
func FvIndex(name string) int {
	if !IsFv(name) {
		panic("ir: FvIndex of non-frame-variable " + name)
	}
	n, _ := strconv.Atoi(name[2:])
	return n
}

func FvName(index int) string {
	return fmt.Sprintf("fv%d", index)
}

// IsReg reports whether name is one of the 15 fixed physical register
// names (duplicated here, rather than importing compile/codegen, to
// keep ir dependency-free of the backend package).
var registerNames = map[string]bool{
	"rax": true, "rbx": true, "rcx": true, "rdx": true, "rsi": true,
	"rdi": true, "rbp": true, "r8": true, "r9": true, "r10": true,
	"r11": true, "r12": true, "r13": true, "r14": true, "r15": true,
}

func IsReg(name string) bool {
	return registerNames[name]
}
