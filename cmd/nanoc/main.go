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
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nanoc/compile"
)

func main() {
	var opt compile.Options

	root := &cobra.Command{
		Use:   "nanoc source.scm",
		Short: "nanoc — nanopass Scheme-to-x86_64 assembly compiler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opt)
		},
	}
	root.Flags().StringVar(&opt.Out, "out", "", "output assembly path (default: <source>.s)")
	root.Flags().BoolVar(&opt.DebugDumpAst, "debug-dump-ast", false, "print the parsed AST before lowering")
	root.Flags().BoolVar(&opt.DebugDumpIR, "debug-dump-ir", false, "print the IR after calling-convention imposition")
	root.Flags().BoolVar(&opt.DebugDumpASM, "debug-dump-asm", false, "print the emitted assembly text")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, opt compile.Options) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out := opt.Out
	if out == "" {
		base := filepath.Base(path)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".s"
	}

	text, err := compile.CompileSource(path, string(src), opt)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return err
	}
	fmt.Printf("compiled %s to %s\n", path, out)
	return nil
}
