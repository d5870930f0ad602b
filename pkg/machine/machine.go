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
	"fmt"
	"io"

	"github.com/lassandro/gozzy/pkg/abbrev"
	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/header"
	"github.com/lassandro/gozzy/pkg/log"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/stack"
	"github.com/lassandro/gozzy/pkg/text"
	"github.com/lassandro/gozzy/pkg/variable"
)

// Load reads a story from reader and builds a machine around it.
func Load(reader io.Reader, opts ...Option) (*Machine, error) {
	story, err := memory.Load(reader)

	if err != nil {
		return nil, err
	}

	return New(story, opts...)
}

// New builds a machine around an already loaded story. The PC starts at
// the header's initial PC unless an option says otherwise.
func New(story *memory.Story, opts ...Option) (*Machine, error) {
	h, err := header.Parse(story)

	if err != nil {
		return nil, err
	}

	abbrevs, err := abbrev.New(story)

	if err != nil {
		return nil, err
	}

	alphabet, err := text.LoadAlphabet(story, story.Version(), h.Alphabet)

	if err != nil {
		return nil, err
	}

	mc := &Machine{
		Memory:  story,
		Header:  h,
		Stack:   stack.New(),
		Abbrevs: abbrevs,
		Decoder: &text.Decoder{
			Memory:   story,
			Abbrevs:  abbrevs,
			Alphabet: alphabet,
		},
		PC: At(h.StartPC),
	}

	for _, opt := range opts {
		opt(mc)
	}

	if h.RawFileLength == 0 {
		log.Warn(log.MachineModule, "no file length in header, checksum not verified")
	} else if err := h.Verify(story); err != nil {
		log.Warn(log.MachineModule, "story may be damaged", "err", err)
	}

	log.Debug(
		log.MachineModule, "machine ready",
		"version", h.Version.Number,
		"release", h.Release,
		"serial", h.Serial,
		"pc", mc.PC,
	)

	return mc, nil
}

// Attach routes every checked memory access through w. A nil w detaches.
func (mc *Machine) Attach(w memory.Watcher) {
	mc.Debugger = w
	mc.Memory.Watcher = w
}

// Run would execute instructions from the PC. Instruction execution is not
// implemented yet, so it returns immediately.
func (mc *Machine) Run() error {
	log.Info(
		log.MachineModule, "run",
		"version", mc.Header.Version.Number,
		"pc", mc.PC,
		"depth", mc.Stack.Depth(),
	)

	return nil
}

func (mc *Machine) globalOffset(v variable.Variable) (address.Offset, error) {
	index, err := v.Index()

	if err != nil {
		return 0, err
	}

	return mc.Header.Globals.Offset() + address.Offset(2*int(index)), nil
}

// ReadVariable pops the stack, or reads a local of the current frame or a
// global from the globals table.
func (mc *Machine) ReadVariable(v variable.Variable) (uint16, error) {
	switch {
	case v.IsStack():
		return mc.Stack.PopWord()

	case v.IsLocal():
		return mc.Stack.ReadLocal(v)

	default:
		offset, err := mc.globalOffset(v)

		if err != nil {
			return 0, err
		}

		return mc.Memory.LoadWord(offset)
	}
}

// WriteVariable is the counterpart of ReadVariable; writing the stack
// variable pushes.
func (mc *Machine) WriteVariable(v variable.Variable, value uint16) error {
	switch {
	case v.IsStack():
		return mc.Stack.PushWord(value)

	case v.IsLocal():
		return mc.Stack.WriteLocal(v, value)

	default:
		offset, err := mc.globalOffset(v)

		if err != nil {
			return err
		}

		return mc.Memory.StoreWord(offset, value)
	}
}

func (mc *Machine) loadWordUnchecked(offset address.Offset) (uint16, error) {
	img := mc.Memory.Image()

	high, err := img.LoadByteUnchecked(offset)

	if err != nil {
		return 0, err
	}

	low, err := img.LoadByteUnchecked(offset + 1)

	if err != nil {
		return 0, err
	}

	return uint16(high)<<8 | uint16(low), nil
}

// Call enters the routine at routine. Arguments fill the first locals;
// before version 5 the remaining locals take the defaults stored in the
// routine header. The result of the routine will be written to ret.
// Calling address 0 stores 0 in ret and does nothing else.
func (mc *Machine) Call(routine address.Offsetter, ret variable.Variable, args []uint16) error {
	start := routine.Offset()

	if start == 0 {
		return mc.WriteVariable(ret, 0)
	}

	count, err := mc.Memory.Image().LoadByteUnchecked(start)

	if err != nil {
		return err
	}

	if int(count) > stack.MaxLocals {
		return fmt.Errorf(
			"%w: routine at %s declares %d", stack.ErrTooManyLocals, start, count,
		)
	}

	locals := make([]uint16, count)
	body := start + 1

	if mc.Header.Version.Number < 5 {
		for i := range locals {
			if locals[i], err = mc.loadWordUnchecked(body); err != nil {
				return err
			}
			body += 2
		}
	}

	copy(locals, args)

	if err := mc.Stack.PushFrame(mc.PC.Offset(), count, ret, locals); err != nil {
		return err
	}

	log.Trace(
		log.MachineModule, "call",
		"routine", start,
		"args", len(args),
		"return_pc", mc.PC,
		"body", body,
	)

	mc.PC = At(body)
	return nil
}

// Return leaves the current routine with value, resuming the caller.
func (mc *Machine) Return(value uint16) error {
	returnPC := mc.Stack.ReturnPC()
	ret := mc.Stack.ReturnVariable()

	if err := mc.Stack.PopFrame(); err != nil {
		return err
	}

	mc.PC = At(returnPC)

	log.Trace(
		log.MachineModule, "return",
		"value", value,
		"pc", mc.PC,
		"store", ret,
	)

	return mc.WriteVariable(ret, value)
}

// Text decodes the string stored at at.
func (mc *Machine) Text(at address.Offsetter) (string, error) {
	return mc.Decoder.DecodeAt(at)
}

// Abbreviation decodes abbreviation index of table.
func (mc *Machine) Abbreviation(table, index uint8) (string, error) {
	location, err := mc.Abbrevs.Location(table, index)

	if err != nil {
		return "", err
	}

	if location == 0 {
		return "", nil
	}

	return mc.Decoder.DecodeAt(location)
}
