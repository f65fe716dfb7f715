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

// Package compile wires every pass of §4.2-4.26 together into the
// single fixed pipeline CompileSource walks end to end, the
// equivalent of compileY/CompileTheWorld in the teacher repo.
package compile

import (
	"fmt"
	"path/filepath"
	"strings"

	"nanoc/ast"
	"nanoc/compile/callconv"
	"nanoc/compile/codegen"
	"nanoc/compile/desugar"
	"nanoc/compile/normalize"
	"nanoc/compile/regalloc"
	"nanoc/ir"
)

func libName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompileSource runs the reader and the full 26-pass pipeline over
// src, returning the program's AT&T-syntax assembly text (§4.26). The
// returned error, when non-nil, always comes from the reader (§7's
// Lexical/syntactic class) — every pass beyond that point either
// produces a well-formed tree or panics with an InvariantViolation,
// since by then the input has already been accepted.
func CompileSource(fileName, src string, opt Options) (string, error) {
	root, err := ast.Parse(fileName, src)
	if err != nil {
		return "", err
	}
	if opt.DebugDumpAst {
		fmt.Printf("== AST(%s) ==\n%s\n", fileName, ir.Print(root))
	}

	gen := ir.NewGen()

	n := desugar.DirectCall(root)
	n = desugar.RemoveAnonymousLambda(n, gen)
	n = desugar.SanitizeBindingForms(n)
	n, _ = desugar.UncoverFree(n)
	n = desugar.ConvertClosures(n, gen)
	n = desugar.OptimizeKnownCalls(n)
	n = desugar.IntroduceProcedurePrimitives(n)
	top := desugar.LiftLetrec(n)

	n = normalize.NormalizeContext(top)
	n = normalize.SpecifyRepresentation(n, gen)
	n = normalize.UncoverLocals(n)
	n = normalize.RemoveLet(n)

	nf := callconv.ImposeCallingConvention(n.(ir.Letrec), gen)
	if opt.DebugDumpIR {
		fmt.Printf("== IR(%s, pre-allocation) ==\n%s\n", fileName, ir.Print(nf))
	}

	low := regalloc.AllocateProgram(nf.(ir.NewFrames), gen)

	blocks := codegen.ExposeBasicBlocks(low.(ir.LowLetrec), gen)
	blocks = codegen.OptimizeJumps(blocks)
	text := codegen.EmitAssembly(blocks)

	if opt.DebugDumpASM {
		fmt.Printf("== ASM(%s.s) ==\n%s\n", libName(fileName), text)
	}
	return text, nil
}
