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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/encoding"
	"github.com/lassandro/gozzy/pkg/machine"
	"github.com/lassandro/gozzy/pkg/stack"
	"github.com/lassandro/gozzy/pkg/variable"
	"github.com/lassandro/gozzy/pkg/version"
)

var ErrNoWatchpoint = errors.New("no such watchpoint")

// New attaches a debugger to mc. Output goes to out, or stdout if nil.
func New(mc *machine.Machine, out io.Writer) *Debugger {
	if out == nil {
		out = os.Stdout
	}

	dbg := &Debugger{Machine: mc, Out: out}
	mc.Attach(dbg)

	return dbg
}

// AddWatch adds a watchpoint unless an identical one exists, and reports
// whether it was added.
func (dbg *Debugger) AddWatch(addr address.Offset, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

// RemoveWatch removes watchpoint i. The last watchpoint takes its place.
func (dbg *Debugger) RemoveWatch(i int) error {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return fmt.Errorf("%w: %d", ErrNoWatchpoint, i)
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
	return nil
}

func (dbg *Debugger) ClearWatches() {
	dbg.Watchpoints = make([]Watchpoint, 0)
}

func (dbg *Debugger) Read(addr address.Offset) {
	dbg.check(addr, WriteWatch, dbg.HandleRead)
}

func (dbg *Debugger) Write(addr address.Offset) {
	dbg.check(addr, ReadWatch, dbg.HandleWrite)
}

func (dbg *Debugger) check(
	addr address.Offset,
	skip WatchpointType,
	handler func(address.Offset, *Debugger),
) {
	if dbg.handling || handler == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == skip {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.handling = true
			defer func() { dbg.handling = false }()

			handler(addr, dbg)
			break
		}
	}
}

// PrintMem dumps count bytes from addr, eight to a row, stopping at the end
// of the story. Memory is read unchecked so that high memory can be
// inspected too.
func (dbg *Debugger) PrintMem(addr address.Offset, count int) {
	img := dbg.Machine.Memory.Image()

	if left := img.Size() - int(addr); count > left {
		count = left
	}

	if count <= 0 {
		fmt.Fprintf(dbg.Out, "%s is outside the story\n", addr)
		return
	}

	for i := addr; i < addr+address.Offset(count); i++ {
		if i == addr {
			fmt.Fprintf(dbg.Out, "\033[1m[%s]\033[0m ", i)
		} else if (i-addr)%8 == 0 {
			fmt.Fprintln(dbg.Out)
			fmt.Fprintf(dbg.Out, "\033[1m[%s]\033[0m ", i)
		}

		result, err := img.LoadByteUnchecked(i)

		if err != nil {
			fmt.Fprint(dbg.Out, "\033[1;30m--\033[0m ")
			continue
		}

		if result == 0 {
			fmt.Fprintf(dbg.Out, "\033[1;30m%02x\033[0m ", result)
		} else {
			fmt.Fprintf(dbg.Out, "%02x ", result)
		}
	}

	fmt.Fprintln(dbg.Out)
}

func (dbg *Debugger) field(name string, value any) {
	fmt.Fprintf(dbg.Out, "\033[1m%-12s\033[0m %v\n", name+":", value)
}

func (dbg *Debugger) PrintHeader() {
	mc := dbg.Machine
	h := mc.Header
	img := mc.Memory.Image()

	supported := make([]string, 0)
	for _, number := range version.Supported() {
		supported = append(supported, fmt.Sprint(number))
	}

	dbg.field("Version", fmt.Sprintf("%d (supported: %s)", h.Version.Number, strings.Join(supported, ", ")))
	dbg.field("Release", h.Release)
	dbg.field("Serial", h.Serial)
	dbg.field("Start PC", h.StartPC)
	dbg.field("High memory", h.HighMemory)
	dbg.field("Static", h.StaticBase)
	dbg.field("Globals", h.Globals)
	dbg.field("Abbrevs", h.Abbrevs)
	dbg.field("Dictionary", h.Dictionary)
	dbg.field("Objects", h.ObjectTable)
	dbg.field("Alphabet", h.Alphabet)
	dbg.field("Flags", fmt.Sprintf("%#02x %#04x", h.Flags1, h.Flags2))
	dbg.field("Length", fmt.Sprintf("%d (%d loaded)", h.FileLength(), img.Size()))

	if err := h.Verify(mc.Memory); err != nil {
		dbg.field("Checksum", err)
	} else {
		dbg.field("Checksum", fmt.Sprintf("%#04x ok", h.Checksum))
	}

	dbg.field("Dynamic", img.Dynamic)
	dbg.field("Static", img.Static)
	dbg.field("High", img.High)
}

func (dbg *Debugger) inspector() (stack.Inspector, bool) {
	inspector, ok := dbg.Machine.Stack.(stack.Inspector)

	if !ok {
		fmt.Fprintf(dbg.Out, "%T cannot be inspected\n", dbg.Machine.Stack)
	}

	return inspector, ok
}

// PrintFrame shows the current frame: its locals and evaluation stack.
func (dbg *Debugger) PrintFrame() {
	mc := dbg.Machine
	s, ok := dbg.inspector()

	if !ok {
		return
	}

	frame := s.Frames()[0]

	fmt.Fprintf(
		dbg.Out, "\033[1m%s\033[0m  depth %d  fp %#x  sp %#x\n",
		mc.PC, s.Depth(), s.FramePointer(), s.StackPointer(),
	)

	for i, value := range frame.Locals {
		v, _ := variable.Local(uint8(i))
		fmt.Fprintf(dbg.Out, "\033[1m%s:\033[0m %#04x\t", v, value)

		if i%4 == 3 {
			fmt.Fprintln(dbg.Out)
		}
	}

	if len(frame.Locals)%4 != 0 {
		fmt.Fprintln(dbg.Out)
	}

	eval := s.Evaluation()

	fmt.Fprint(dbg.Out, "\033[1mSP:\033[0m")

	// Top first. A stray byte on top is shown on its own.
	top := len(eval)

	if top%2 != 0 {
		fmt.Fprintf(dbg.Out, " %02x", eval[top-1])
		top--
	}

	for i := top - 2; i >= 0; i -= 2 {
		fmt.Fprintf(dbg.Out, " %#04x", encoding.Word(eval, i))
	}

	fmt.Fprintln(dbg.Out)
}

// PrintFrames lists every frame, innermost first.
func (dbg *Debugger) PrintFrames() {
	s, ok := dbg.inspector()

	if !ok {
		return
	}

	frames := s.Frames()

	for i, frame := range frames {
		if frame.IsBase() {
			fmt.Fprintf(dbg.Out, "\033[1m#%d\033[0m [%#04x] \033[1;30mbase\033[0m\n", i, frame.Start)
			continue
		}

		fmt.Fprintf(
			dbg.Out, "\033[1m#%d\033[0m [%#04x] return %s -> %s, %d locals\n",
			i, frame.Start, frame.ReturnPC, frame.ReturnVar, len(frame.Locals),
		)
	}
}
