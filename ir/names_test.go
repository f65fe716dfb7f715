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

func TestGenProducesDistinctShapes(t *testing.T) {
	g := NewGen()
	uv := g.UVar("x")
	tmp := g.Temp()
	nfv := g.NewFrameVar()
	anon := g.Anon()
	label := g.Label()

	if !IsUvar(uv) {
		t.Errorf("UVar result %q is not a uvar shape", uv)
	}
	if !IsUvar(tmp) {
		t.Errorf("Temp result %q is not a uvar shape (t. prefix)", tmp)
	}
	if IsLabel(uv) {
		t.Errorf("UVar result %q should not look like a label", uv)
	}
	if !IsLabel(label) {
		t.Errorf("Label result %q is not a label shape", label)
	}
	seen := map[string]bool{uv: true, tmp: true, nfv: true, anon: true, label: true}
	if len(seen) != 5 {
		t.Errorf("Gen produced a repeated name across five distinct calls: %v", seen)
	}
}

func TestCodeLabelSubstitutesDotForDollar(t *testing.T) {
	got := CodeLabel("f.5001")
	want := "f$5001"
	if got != want {
		t.Errorf("CodeLabel(%q) = %q, want %q", "f.5001", got, want)
	}
}

func TestReturnPointLabel(t *testing.T) {
	if got := ReturnPointLabel("f$5001"); got != "rp.f$5001" {
		t.Errorf("ReturnPointLabel = %q, want %q", got, "rp.f$5001")
	}
}

func TestFvNameRoundTrips(t *testing.T) {
	for _, idx := range []int{0, 1, 17} {
		name := FvName(idx)
		if !IsFv(name) {
			t.Errorf("FvName(%d) = %q, not recognized by IsFv", idx, name)
		}
		if got := FvIndex(name); got != idx {
			t.Errorf("FvIndex(FvName(%d)) = %d", idx, got)
		}
	}
	if IsFv("f17") {
		t.Error("\"f17\" (missing second v) should not be a frame-variable shape")
	}
}

func TestIsReg(t *testing.T) {
	for _, r := range []string{"rax", "rbp", "r15"} {
		if !IsReg(r) {
			t.Errorf("IsReg(%q) = false, want true", r)
		}
	}
	if IsReg("t.5000") {
		t.Error("a user-variable temp should not read as a register")
	}
}
