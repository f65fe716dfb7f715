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
package compile

import (
	"strings"
	"testing"
)

// End-to-end scenarios from spec.md §8 (S1-S6). CompileSource is run
// to completion for each and the resulting text is checked for the
// shape §4.26 mandates, since assembling and linking against the
// external runtime is out of this repository's scope (§4.1, §7).
var scenarios = []struct {
	name string
	src  string
}{
	{"S1-sum", "(+ '3 '4)"},
	{"S2-if", "(if (eq? '1 '2) '10 '20)"},
	{"S3-car", "(car (cons '5 '6))"},
	{"S4-cdr", "(cdr (cons '5 '6))"},
	{"S5-factorial", `(letrec ([f.0 (lambda (n.1) (if (eq? n.1 '0) '1
         (* n.1 (f.0 (- n.1 '1)))))]) (f.0 '5))`},
	{"S6-vector", "'#3(1 2 3)"},
}

func TestCompileSourceScenariosProduceWellFormedAssembly(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			text, err := CompileSource(sc.name+".scm", sc.src, Options{})
			if err != nil {
				t.Fatalf("CompileSource(%q): %v", sc.src, err)
			}
			if !strings.HasPrefix(text, ".globl _scheme_entry\n") {
				t.Errorf("assembly does not begin with the required .globl directive:\n%s", text)
			}
			if !strings.Contains(text, "_scheme_entry:") {
				t.Errorf("assembly missing _scheme_entry block:\n%s", text)
			}
			if !strings.Contains(text, "_scheme_exit:") {
				t.Errorf("assembly missing _scheme_exit block:\n%s", text)
			}
			// A terminating retq appears only in _scheme_exit (§6).
			exitIdx := strings.Index(text, "_scheme_exit:")
			before := text[:exitIdx]
			if strings.Contains(before, "retq") {
				t.Errorf("retq appears before _scheme_exit:\n%s", text)
			}
			after := text[exitIdx:]
			if strings.Count(after, "retq") != 1 {
				t.Errorf("_scheme_exit must contain exactly one retq, got:\n%s", after)
			}
		})
	}
}

func TestCompileSourceRejectsMalformedSyntax(t *testing.T) {
	_, err := CompileSource("bad.scm", "(+ 1", Options{})
	if err == nil {
		t.Fatal("expected a reader error for unmatched delimiter, got nil")
	}
}

func TestCompileSourceDebugDumpsDoNotAlterOutput(t *testing.T) {
	plain, err := CompileSource("s1.scm", scenarios[0].src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	withDumps, err := CompileSource("s1.scm", scenarios[0].src, Options{
		DebugDumpAst: true,
		DebugDumpIR:  true,
		DebugDumpASM: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if plain != withDumps {
		t.Errorf("debug-dump flags changed the emitted assembly")
	}
}
