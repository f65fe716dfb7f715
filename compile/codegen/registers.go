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

import "nanoc/utils"

// Register names the core ever emits. Unlike a general-purpose ABI
// target, this backend fixes the role of every register up front: no
// register is ever chosen by a calling-convention table, only by the
// register allocator (compile/regalloc).
type Register struct {
	Name  string
	Index int
}

var (
	RAX = Register{"rax", 0}
	RBX = Register{"rbx", 1}
	RCX = Register{"rcx", 2}
	RDX = Register{"rdx", 3}
	RSI = Register{"rsi", 4}
	RDI = Register{"rdi", 5}
	RBP = Register{"rbp", 6}
	R8  = Register{"r8", 7}
	R9  = Register{"r9", 8}
	R10 = Register{"r10", 9}
	R11 = Register{"r11", 10}
	R12 = Register{"r12", 11}
	R13 = Register{"r13", 12}
	R14 = Register{"r14", 13}
	R15 = Register{"r15", 14}
)

// AllRegisters is the fixed 15-register set. Order matters only for
// AllocatableRegisters below; it does not imply priority.
var AllRegisters = []Register{RAX, RBX, RCX, RDX, RSI, RDI, RBP, R8, R9, R10, R11, R12, R13, R14, R15}

// Fixed roles. rbp is the frame pointer, rax carries return values,
// r15 carries the return address, rdx is the heap allocation pointer.
// {r8,r9} are the two parameter registers; further arguments live in
// frame variables.
var (
	FramePointerReg = RBP
	ReturnValueReg  = RAX
	ReturnAddrReg   = R15
	HeapAllocReg    = RDX
)

var ParamRegs = []Register{R8, R9}

// AllocatableRegisters excludes the registers whose role is fixed by
// the calling convention itself (rbp, r15, rdx) from the pool the
// register allocator may hand out to ordinary user variables. rax is
// allocatable: it only carries a value across the single instant of a
// tail jump, and by then no symbol still names it.
func AllocatableRegisters() []Register {
	out := make([]Register, 0, len(AllRegisters))
	for _, r := range AllRegisters {
		if r == FramePointerReg || r == ReturnAddrReg || r == HeapAllocReg {
			continue
		}
		out = append(out, r)
	}
	return out
}

func LookupRegister(name string) (Register, bool) {
	for _, r := range AllRegisters {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

func (r Register) String() string {
	return r.Name
}

func init() {
	utils.Assert(len(AllRegisters) == 15, "the core fixes exactly 15 physical registers")
}
