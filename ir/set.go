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
	"sort"

	"nanoc/utils"
)

// NameSet is the Locals/Ulocals/Spills/CallLive representation: an
// unordered set of variable names. Sorted() gives the fixed order
// passes need when they must emit members in some deterministic
// sequence (e.g. a lambda's Free variable list, §4.5).
type NameSet struct {
	*utils.Set[string]
}

func NewNameSet() *NameSet {
	return &NameSet{utils.NewSet[string]()}
}

func NameSetOf(names ...string) *NameSet {
	s := NewNameSet()
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s *NameSet) Sorted() []string {
	out := s.Elements()
	sort.Strings(out)
	return out
}

func (s *NameSet) Clone() *NameSet {
	return &NameSet{s.Set.Clone()}
}

// Union adds every member of o into s, in place.
func (s *NameSet) Union(o *NameSet) {
	s.Set.Union(o.Set)
}
