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

// ConflictGraph is an undirected relation over names: a maps to the
// set of names that are simultaneously live with it at some point and
// hence cannot share a physical location. Every edge insertion touches
// both endpoints' entries so the relation never goes one-directional.
type ConflictGraph struct {
	adj map[string]*NameSet
}

func NewConflictGraph() *ConflictGraph {
	return &ConflictGraph{adj: make(map[string]*NameSet)}
}

func (g *ConflictGraph) ensure(name string) *NameSet {
	s, ok := g.adj[name]
	if !ok {
		s = NewNameSet()
		g.adj[name] = s
	}
	return s
}

// AddVertex ensures name has an (initially empty) entry, even if it
// never conflicts with anything.
func (g *ConflictGraph) AddVertex(name string) {
	g.ensure(name)
}

// AddEdge records that a and b are simultaneously live. A conflict of
// a name with itself is never recorded (e.g. a move whose source and
// destination coincide).
func (g *ConflictGraph) AddEdge(a, b string) {
	if a == b {
		return
	}
	g.ensure(a).Add(b)
	g.ensure(b).Add(a)
}

func (g *ConflictGraph) Neighbors(name string) *NameSet {
	if s, ok := g.adj[name]; ok {
		return s
	}
	return NewNameSet()
}

func (g *ConflictGraph) Degree(name string) int {
	return g.Neighbors(name).Length()
}

func (g *ConflictGraph) Has(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// Clone returns an independent copy of g: every vertex's neighbor set
// is itself cloned, so mutating the copy (as simplify-select coloring
// does while it unwinds vertices) never disturbs the original graph.
func (g *ConflictGraph) Clone() *ConflictGraph {
	o := NewConflictGraph()
	for name, neighbors := range g.adj {
		o.adj[name] = neighbors.Clone()
	}
	return o
}

func (g *ConflictGraph) Vertices() []string {
	out := make([]string, 0, len(g.adj))
	for k := range g.adj {
		out = append(out, k)
	}
	return out
}

// RemoveVertex deletes name and removes it from every remaining
// neighbor's entry, returning the neighbor set it had so the caller
// can restore edges when unwinding (simplify-select coloring).
func (g *ConflictGraph) RemoveVertex(name string) *NameSet {
	neighbors := g.Neighbors(name).Clone()
	neighbors.ForEach(func(n string) {
		if s, ok := g.adj[n]; ok {
			s.Remove(name)
		}
	})
	delete(g.adj, name)
	return neighbors
}
