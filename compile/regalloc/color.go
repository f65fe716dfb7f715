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

import "nanoc/ir"

// ColorResult is what one simplify-select pass over the register
// conflict graph produces: a home for every name it managed to color,
// and the set of names it could not (which must go to the frame and
// come back around the everybody-home loop, §4.19-4.20).
type ColorResult struct {
	Homes  map[string]string
	Spills *ir.NameSet
}

// Color runs simplify-select graph coloring over graph restricted to
// candidates (locals ∪ ulocals, never a fixed register), using
// registers as the palette. Every physical register already present
// in the graph (from a Set whose source or target is a register, e.g.
// formals arriving in param registers) pins its own color so user
// variables never collide with it.
//
// ulocals must never spill: select-instructions only introduces one
// to stage a move no instruction can perform directly, and a spilled
// unspillable would just reintroduce the same illegal form next
// iteration. A compiler that cannot color an ulocal has a bug
// upstream, not a degenerate input, so that case panics.
func Color(graph *ir.ConflictGraph, candidates, ulocals *ir.NameSet, registers []string) ColorResult {
	k := len(registers)
	work := graph.Clone()
	order, removed := simplify(work, candidates, ulocals, k)

	homes := map[string]string{}
	for _, r := range registers {
		homes[r] = r
	}

	spills := ir.NewNameSet()
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		neighbors := removed[name]
		used := map[string]bool{}
		neighbors.ForEach(func(n string) {
			if h, ok := homes[n]; ok {
				used[h] = true
			}
		})
		color := ""
		for _, r := range registers {
			if !used[r] {
				color = r
				break
			}
		}
		if color == "" {
			if ulocals.Contains(name) {
				ir.InvariantViolation("select-registers: unspillable could not be colored", ir.Symbol{Name: name})
			}
			spills.Add(name)
			continue
		}
		homes[name] = color
	}
	return ColorResult{Homes: homes, Spills: spills}
}

// simplify repeatedly removes a candidate vertex of degree < k from
// work, preferring a ulocal over a regular local when either would do
// (any order that always finds such a vertex when one exists yields a
// valid coloring, since a vertex with fewer than k neighbors can
// always be given a color none of them uses, but removing unspillable
// temporaries first is what the design calls for, §9). If no such
// vertex remains, the lowest-degree *local* is removed anyway as an
// optimistic spill candidate, exactly as simplify-select does when a
// graph is not k-colorable by the easy rule alone (§4.19: "pick any
// local (which will spill)"); a ulocal is only ever forced into this
// branch when no local remains, since a ulocal must never spill.
func simplify(work *ir.ConflictGraph, candidates, ulocals *ir.NameSet, k int) ([]string, map[string]*ir.NameSet) {
	var order []string
	removed := map[string]*ir.NameSet{}
	remaining := candidates.Clone()

	for remaining.Length() > 0 {
		names := remaining.Sorted()

		pick, found := "", false
		for _, name := range names {
			if ulocals.Contains(name) && work.Degree(name) < k {
				pick, found = name, true
				break
			}
		}
		if !found {
			for _, name := range names {
				if !ulocals.Contains(name) && work.Degree(name) < k {
					pick, found = name, true
					break
				}
			}
		}
		if !found {
			pick, found = lowestDegree(work, names, ulocals, false)
		}
		if !found {
			pick, _ = lowestDegree(work, names, ulocals, true)
		}

		removed[pick] = work.RemoveVertex(pick)
		order = append(order, pick)
		remaining.Remove(pick)
	}
	return order, removed
}

// lowestDegree returns the lowest-degree name in names that is a
// ulocal (wantUlocal true) or a regular local (wantUlocal false), or
// ("", false) if no name of that kind remains.
func lowestDegree(work *ir.ConflictGraph, names []string, ulocals *ir.NameSet, wantUlocal bool) (string, bool) {
	pick, pickDegree, found := "", 0, false
	for _, name := range names {
		if ulocals.Contains(name) != wantUlocal {
			continue
		}
		deg := work.Degree(name)
		if !found || deg < pickDegree {
			pick, pickDegree, found = name, deg, true
		}
	}
	return pick, found
}
