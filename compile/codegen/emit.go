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

import (
	"fmt"

	"nanoc/ir"
)

// calleeSaved is the SysV register set _scheme_entry must preserve
// across the call, since it overwrites rbp and r15 itself for its own
// conventions (§4.26). Restored in reverse by _scheme_exit.
var calleeSaved = []string{"rbx", "rbp", "r12", "r13", "r14", "r15"}

var binopMnemonic = map[string]string{
	"+":      "addq",
	"-":      "subq",
	"*":      "imulq",
	"logand": "andq",
	"logor":  "orq",
	"sra":    "sarq",
}

var relopCC = map[string]string{
	"<":  "jl",
	"<=": "jle",
	"=":  "je",
	">=": "jge",
	">":  "jg",
}

var invertCC = map[string]string{
	"jl": "jge", "jle": "jg", "je": "jne", "jge": "jl", "jg": "jle",
}

// Emitter accumulates the output assembly text one instruction at a
// time, mirroring how a line-oriented assembler buffer is built up
// pass by pass rather than through a generic printer.
type Emitter struct {
	buf string
}

// EmitAssembly walks the flat block list (already run through
// ExposeBasicBlocks and OptimizeJumps) and produces the program's
// complete AT&T-syntax text, wrapped in the _scheme_entry/_scheme_exit
// trampoline the external runtime calls into (§4.26).
func EmitAssembly(blocks []Block) string {
	e := &Emitter{}
	e.buf += ".globl _scheme_entry\n"
	e.emitEntry()
	for _, b := range blocks {
		e.buf += fmt.Sprintf("%s:\n", b.Label)
		e.emitNode(b.Tail)
	}
	e.emitExit()
	return e.buf
}

func (e *Emitter) line(format string, args ...interface{}) {
	e.buf += "  " + fmt.Sprintf(format, args...) + "\n"
}

func (e *Emitter) emitEntry() {
	e.buf += "_scheme_entry:\n"
	for _, r := range calleeSaved {
		e.line("pushq %%%s", r)
	}
	e.line("movq %%rdi, %%rdx")
	e.line("movq %%rsi, %%rbp")
	e.line("leaq _scheme_exit(%%rip), %%r15")
}

func (e *Emitter) emitExit() {
	e.buf += "_scheme_exit:\n"
	for i := len(calleeSaved) - 1; i >= 0; i-- {
		e.line("popq %%%s", calleeSaved[i])
	}
	e.line("retq")
}

func (e *Emitter) emitNode(n ir.Node) {
	switch v := n.(type) {
	case ir.Begin:
		for _, expr := range v.Exprs {
			e.emitNode(expr)
		}
	case ir.Nop:
	case ir.Set:
		e.emitSet(v)
	case ir.Mset:
		e.emitMset(v)
	case ir.Funcall:
		e.emitFuncall(v)
	case ir.If1:
		e.emitIf1(v)
	case ir.If:
		e.emitIf(v)
	default:
		ir.InvariantViolation("emit-assembly", n)
	}
}

func (e *Emitter) emitSet(v ir.Set) {
	dst := e.operand(ir.Symbol{Name: v.Target})
	switch rhs := v.Value.(type) {
	case ir.Symbol:
		if ir.IsLabel(rhs.Name) {
			e.line("leaq %s(%%rip), %s", rhs.Name, dst)
			return
		}
		e.line("movq %s, %s", e.operand(rhs), dst)
	case ir.Int64:
		e.line("movq %s, %s", e.operand(rhs), dst)
	case ir.Prim2:
		e.emitBinop(v.Target, rhs)
	case ir.Mref:
		e.line("movq %s, %s", e.memOperand(rhs.Base, rhs.Offset), dst)
	case ir.Alloc:
		// Bump-pointer allocation from rdx, rounded up to a whole word.
		e.line("movq %%rdx, %s", dst)
		if size, ok := rhs.Size.(ir.Int64); ok {
			e.line("addq $%d, %%rdx", (size.Value+7)&^7)
		} else {
			e.line("addq %s, %%rdx", e.operand(rhs.Size))
			e.line("addq $7, %%rdx")
			e.line("andq $-8, %%rdx")
		}
	default:
		ir.InvariantViolation("emit-assembly: unsupported Set rhs", v)
	}
}

func (e *Emitter) emitMset(v ir.Mset) {
	e.line("movq %s, %s", e.operand(v.Value), e.memOperand(v.Base, v.Offset))
}

// emitBinop relies on select-instructions (§4.18) having already
// arranged for Arg1 to name the same location as the target, the
// instruction shape real x86_64 binary ops require.
func (e *Emitter) emitBinop(target string, rhs ir.Prim2) {
	mnemonic, ok := binopMnemonic[rhs.Op]
	if !ok {
		ir.InvariantViolation("emit-assembly: unknown binop", rhs)
	}
	e.line("%s %s, %s", mnemonic, e.operand(rhs.Arg2), e.operand(ir.Symbol{Name: target}))
}

func (e *Emitter) emitFuncall(v ir.Funcall) {
	sym, ok := v.Callee.(ir.Symbol)
	if !ok {
		ir.InvariantViolation("emit-assembly: non-symbol call target", v)
		return
	}
	if ir.IsLabel(sym.Name) {
		e.line("jmp %s", sym.Name)
		return
	}
	e.line("jmp *%s", e.operand(sym))
}

// emitIf1 emits the one-armed conditional jump optimize-jumps (§4.25)
// produced: a "not"-wrapped predicate inverts the condition code since
// the branch that used to fall through changed sides.
func (e *Emitter) emitIf1(v ir.If1) {
	pred := v.Pred
	negate := false
	if p1, ok := pred.(ir.Prim1); ok && p1.Op == "not" {
		negate = true
		pred = p1.Arg
	}
	rel := pred.(ir.Prim2)
	cc := relopCC[rel.Op]
	if negate {
		cc = invertCC[cc]
	}
	e.line("cmpq %s, %s", e.operand(rel.Arg2), e.operand(rel.Arg1))
	label, _ := calleeLabel(v.Then)
	e.line("%s %s", cc, label)
}

// emitIf handles a conditional that optimize-jumps could not collapse
// to If1 because neither branch is the immediate successor: both
// targets need an explicit jump.
func (e *Emitter) emitIf(v ir.If) {
	rel := v.Pred.(ir.Prim2)
	e.line("cmpq %s, %s", e.operand(rel.Arg2), e.operand(rel.Arg1))
	thenLabel, _ := calleeLabel(v.Then)
	elseLabel, _ := calleeLabel(v.Else)
	e.line("%s %s", relopCC[rel.Op], thenLabel)
	e.line("jmp %s", elseLabel)
}

func (e *Emitter) operand(n ir.Node) string {
	switch v := n.(type) {
	case ir.Symbol:
		if reg, ok := LookupRegister(v.Name); ok {
			return "%" + reg.Name
		}
		if ir.IsFv(v.Name) {
			return fmt.Sprintf("%d(%%rbp)", ir.FvIndex(v.Name)*8)
		}
		return v.Name
	case ir.Int64:
		return fmt.Sprintf("$%d", v.Value)
	default:
		ir.InvariantViolation("emit-assembly: not an operand", n)
		return ""
	}
}

// memOperand renders the two Mref/Mset addressing shapes §4.26 names:
// a constant displacement off a register base, or two registers with
// no displacement (used for a dynamically computed vector or
// procedure-slot index already converted to a byte offset).
func (e *Emitter) memOperand(base, offset ir.Node) string {
	baseReg := e.operand(base)
	if imm, ok := offset.(ir.Int64); ok {
		return fmt.Sprintf("%d(%s)", imm.Value, baseReg)
	}
	return fmt.Sprintf("(%s,%s)", baseReg, e.operand(offset))
}
