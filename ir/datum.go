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

// Datum is the payload of a Quote: an immediate value built directly
// by the reader, never itself passed through a pass. Quoted lists and
// vectors are heterogeneous, so Datum is a small closed sum of its
// own, separate from Node.
type Datum interface {
	isDatum()
	String() string
}

type DatumInt64 int64

func (DatumInt64) isDatum()        {}
func (d DatumInt64) String() string { return fmt.Sprintf("%d", int64(d)) }

type DatumBool bool

func (DatumBool) isDatum() {}
func (d DatumBool) String() string {
	if d {
		return "#t"
	}
	return "#f"
}

type DatumEmptyList struct{}

func (DatumEmptyList) isDatum()        {}
func (DatumEmptyList) String() string { return "()" }

// DatumPair is one cons cell of a quoted list; Cdr is DatumEmptyList
// at the proper-list terminator.
type DatumPair struct {
	Car, Cdr Datum
}

func (DatumPair) isDatum() {}
func (d DatumPair) String() string {
	return fmt.Sprintf("(%s . %s)", d.Car, d.Cdr)
}

type DatumVector struct {
	Elems []Datum
}

func (DatumVector) isDatum() {}
func (d DatumVector) String() string {
	s := "#("
	for i, e := range d.Elems {
		if i > 0 {
			s += " "
		}
		s += e.String()
	}
	return s + ")"
}
