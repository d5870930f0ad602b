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

package debugger

import (
	"io"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/machine"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = iota
	WriteWatch
	ReadWriteWatch
)

func (t WatchpointType) String() string {
	switch t {
	case ReadWatch:
		return "read"
	case WriteWatch:
		return "write"
	default:
		return "readwrite"
	}
}

type Watchpoint struct {
	Addr address.Offset
	Type WatchpointType
}

type Debugger struct {
	Watchpoints []Watchpoint

	Machine *machine.Machine
	Out     io.Writer

	HandleRead  func(address.Offset, *Debugger)
	HandleWrite func(address.Offset, *Debugger)

	// Set while a handler runs; accesses made by the handler do not trigger
	// watchpoints.
	handling bool
}
