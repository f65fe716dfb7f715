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
	"testing"

	"nanoc/ir"
)

// TestSimplifyForcedPickNeverChoosesAUlocalBeforeLocalsRunOut builds a
// triangle of one ulocal and two regular locals, all of equal degree
// and all >= k, so no vertex qualifies for the easy "degree < k" rule
// and simplify must force a pick (§4.19: "pick any local"). The ulocal
// sorts alphabetically first, which is exactly the case a
// degree-only tiebreak (ignoring ulocal-ness) would get wrong by
// force-picking the ulocal; a forced pick must always prefer a
// regular local while one remains, since only a local may ever spill.
func TestSimplifyForcedPickNeverChoosesAUlocalBeforeLocalsRunOut(t *testing.T) {
	g := ir.NewConflictGraph()
	g.AddEdge("a.ulocal", "z.1")
	g.AddEdge("a.ulocal", "z.2")
	g.AddEdge("z.1", "z.2")

	candidates := ir.NameSetOf("a.ulocal", "z.1", "z.2")
	ulocals := ir.NameSetOf("a.ulocal")

	order, _ := simplify(g, candidates, ulocals, 2)
	if len(order) == 0 {
		t.Fatal("simplify produced an empty order")
	}
	if order[0] == "a.ulocal" {
		t.Errorf("first forced pick = %q, want a regular local (z.1 or z.2); the ulocal must never be the forced-spill candidate while a local remains", order[0])
	}
}

// TestSimplifyForcedPickFallsBackToUlocalWhenNoLocalRemains checks the
// other half of the rule: once every regular local has already been
// simplified away, a remaining ulocal at or above degree k is still a
// valid (if unusual) forced pick rather than simplify looping forever.
func TestSimplifyForcedPickFallsBackToUlocalWhenNoLocalRemains(t *testing.T) {
	g := ir.NewConflictGraph()
	g.AddVertex("solo.ulocal")
	// Pin enough registers' worth of neighbors so its degree is >= k
	// even though nothing else is a live candidate.
	g.AddEdge("solo.ulocal", "rax")
	g.AddEdge("solo.ulocal", "rbx")

	candidates := ir.NameSetOf("solo.ulocal")
	ulocals := ir.NameSetOf("solo.ulocal")

	order, _ := simplify(g, candidates, ulocals, 2)
	if len(order) != 1 || order[0] != "solo.ulocal" {
		t.Errorf("order = %v, want exactly [solo.ulocal] once it is the only candidate left", order)
	}
}
