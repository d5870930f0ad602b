// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"github.com/lassandro/gozzy/pkg/abbrev"
	"github.com/lassandro/gozzy/pkg/header"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/stack"
	"github.com/lassandro/gozzy/pkg/text"
)

// Machine ties a loaded story to the state needed to run it.
type Machine struct {
	Memory  *memory.Story
	Header  *header.Header
	Stack   stack.Stack
	Abbrevs *abbrev.Table
	Decoder *text.Decoder
	PC      PC

	// Debugger sees every checked memory access once attached.
	Debugger memory.Watcher
}

// Option adjusts a Machine before it is returned by Load or New.
type Option func(*Machine)

// WithPC starts execution at pc rather than the header's initial PC.
func WithPC(pc PC) Option {
	return func(mc *Machine) {
		mc.PC = pc
	}
}

// WithStack replaces the fresh call stack.
func WithStack(s stack.Stack) Option {
	return func(mc *Machine) {
		mc.Stack = s
	}
}

// WithDebugger attaches w to the story memory.
func WithDebugger(w memory.Watcher) Option {
	return func(mc *Machine) {
		mc.Attach(w)
	}
}
