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

import "testing"

func TestPrintRoundTripsSourceForms(t *testing.T) {
	n := If{
		Pred: Prim2{Op: "<", Arg1: Symbol{Name: "x"}, Arg2: Int64{Value: 0}},
		Then: Int64{Value: -1},
		Else: Int64{Value: 1},
	}
	got := Print(n)
	want := "(if (< x '0) '-1 '1)"
	if got != want {
		t.Errorf("Print(If{...}) = %q, want %q", got, want)
	}
}

func TestStringerAdapts(t *testing.T) {
	s := Stringer{Node: Symbol{Name: "f.5000"}}
	if s.String() != "f.5000" {
		t.Errorf("Stringer.String() = %q, want %q", s.String(), "f.5000")
	}
}

func TestPrintLowIRVariants(t *testing.T) {
	n := NewFrames{Frames: [][]string{{"nfv.1", "nfv.2"}}, Body: Nop{}}
	got := Print(n)
	want := "(new-frames 1) (nop)"
	if got != want {
		t.Errorf("Print(NewFrames{...}) = %q, want %q", got, want)
	}
}
