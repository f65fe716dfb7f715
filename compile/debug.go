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
package compile

// Options mirrors the boolean debug parameters compileY/parseY thread
// through the teacher's own pipeline, gathered into one value-typed
// struct instead of several positional bools.
type Options struct {
	Out          string
	DebugDumpAst bool
	DebugDumpIR  bool
	DebugDumpASM bool
}
