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

import "fmt"

// SemanticError covers §7's "Semantic" class: unknown primitive
// arity, unbound free variable, duplicate formals or bindings, set!
// of a non-symbol, unsupported quote shape. Returned, never panicked,
// so a CLI wrapper can report it as a normal compile failure.
type SemanticError struct {
	Pass   string
	Detail string
	Node   fmt.Stringer
}

func (e *SemanticError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("%s: %s: %s", e.Pass, e.Detail, e.Node.String())
	}
	return fmt.Sprintf("%s: %s", e.Pass, e.Detail)
}

func NewSemanticError(pass, detail string, node fmt.Stringer) *SemanticError {
	return &SemanticError{Pass: pass, Detail: detail, Node: node}
}

// InvariantViolation is raised (it panics) when
// a pass encounters an IR shape that an earlier pass should already
// have eliminated. This is always a compiler bug, never a malformed
// input, so it is not returned as an error — it fails loudly with the
// offending node printed, per §7's "Structural" class.
func InvariantViolation(pass string, node interface{}) {
	panic(fmt.Sprintf("%s: invariant violation, unexpected node: %#v", pass, node))
}

// AllocError covers §7's "Resource" class, such as the everybody-home
// loop failing to converge within its iteration bound. These are
// internal bugs and so are fatal, not returned.
func AllocError(detail string) {
	panic("allocator resource error: " + detail)
}
