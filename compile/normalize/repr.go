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
package normalize

// The tagged 63-bit value representation (§3 "Value representation").
// Every heap pointer carries its tag in its low three bits; Mref/Mset
// offsets below are stated relative to a base that still carries that
// tag, matching how the pointer is actually held in a register.
const (
	WordSize     = 8
	TagShift     = 3
	TagFixnum    = 0
	TagPair      = 1
	TagProcedure = 2
	TagVector    = 3
	TagMask      = 0x7

	PairSize      = 16
	PairCarOffset = -TagPair
	PairCdrOffset = 8 - TagPair

	ProcCodeOffset = -TagProcedure
	ProcDataOffset = 8 - TagProcedure

	VecLengthOffset = -TagVector
	VecDataOffset   = 8 - TagVector

	BoolMask      = 0xF7
	BoolTrueBits  = 0x0E
	BoolFalseBits = 0x06
	EmptyListBits = 0x16
	VoidBits      = 0x1E
)

func encodeFixnum(n int64) int64 { return n << TagShift }

func encodeBool(b bool) int64 {
	if b {
		return BoolTrueBits
	}
	return BoolFalseBits
}
