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

package stack

import (
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/encoding"
	"github.com/lassandro/gozzy/pkg/log"
	"github.com/lassandro/gozzy/pkg/variable"
)

// CallStack keeps frames and evaluation values in one fixed buffer.
//
// fp is the start of the current frame, s0 the first byte after its
// locals (the bottom of its evaluation stack) and sp the next free byte.
type CallStack struct {
	buf [Capacity]byte

	fp int
	s0 int
	sp int
}

// New returns a stack holding only the base pseudo-frame, which has no
// caller, no continuation, returns to the stack and has no locals.
func New() *CallStack {
	s := &CallStack{}

	s.pushHeader(Capacity, 0, variable.Stack(), 0)
	s.s0 = s.sp

	return s
}

func (s *CallStack) pushHeader(
	savedFP int, returnPC address.Offset, returnVar variable.Variable, numLocals uint8,
) {
	encoding.PutWord(s.buf[:], s.sp+savedFPOffset, uint16(savedFP))
	encoding.PutLongWord(s.buf[:], s.sp+returnPCOffset, uint32(returnPC))
	s.buf[s.sp+returnVarOffset] = returnVar.Byte()
	s.buf[s.sp+numLocalsOffset] = numLocals
	s.sp += HeaderSize
}

func (s *CallStack) PushByte(value uint8) error {
	if s.sp >= Capacity {
		return ErrStackOverflow
	}

	s.buf[s.sp] = value
	s.sp++
	return nil
}

// PopByte never reaches below the current frame's locals.
func (s *CallStack) PopByte() (uint8, error) {
	if s.sp <= s.s0 {
		return 0, ErrStackUnderflow
	}

	s.sp--
	return s.buf[s.sp], nil
}

func (s *CallStack) PushWord(value uint16) error {
	if s.sp+2 > Capacity {
		return ErrStackOverflow
	}

	encoding.PutWord(s.buf[:], s.sp, value)
	s.sp += 2
	return nil
}

func (s *CallStack) PopWord() (uint16, error) {
	if s.sp-2 < s.s0 {
		return 0, ErrStackUnderflow
	}

	s.sp -= 2
	return encoding.Word(s.buf[:], s.sp), nil
}

// PushFrame starts a frame for a routine call at the current stack pointer.
// Locals are zeroed and then filled from operands; operands beyond
// numLocals are dropped. A frame that does not fit leaves the stack
// unchanged.
func (s *CallStack) PushFrame(
	returnPC address.Offset,
	numLocals uint8,
	returnVar variable.Variable,
	operands []uint16,
) error {
	if int(numLocals) > MaxLocals {
		return fmt.Errorf("%w: %d", ErrTooManyLocals, numLocals)
	}

	if returnPC < 0 || uint64(returnPC) > 0xFFFFFFFF {
		return fmt.Errorf("%w: %s", ErrReturnPCTooLarge, returnPC)
	}

	size := HeaderSize + 2*int(numLocals)

	if s.sp+size > Capacity {
		return fmt.Errorf(
			"%w: frame of %d bytes at %#x", ErrStackOverflow, size, s.sp,
		)
	}

	newFP := s.sp
	s.pushHeader(s.fp, returnPC, returnVar, numLocals)
	s.fp = newFP

	for i := 0; i < int(numLocals); i++ {
		value := uint16(0)
		if i < len(operands) {
			value = operands[i]
		}

		encoding.PutWord(s.buf[:], s.sp, value)
		s.sp += 2
	}

	s.s0 = s.sp

	log.Trace(
		log.StackModule, "push frame",
		"fp", s.fp,
		"saved_fp", s.SavedFramePointer(),
		"return_pc", returnPC,
		"return_var", returnVar,
		"locals", numLocals,
		"dropped", max(0, len(operands)-int(numLocals)),
	)

	return nil
}

// PopFrame discards the current frame, along with anything pushed on top
// of it, and makes the caller's frame current.
func (s *CallStack) PopFrame() error {
	savedFP := s.SavedFramePointer()

	if savedFP >= Capacity {
		return ErrCannotPopBaseFrame
	}

	s.sp = s.fp
	s.fp = savedFP
	s.s0 = s.fp + HeaderSize + 2*s.NumLocals()

	log.Trace(log.StackModule, "pop frame", "fp", s.fp, "sp", s.sp)

	return nil
}

func (s *CallStack) localIndex(v variable.Variable) (int, error) {
	if !v.IsLocal() {
		return 0, fmt.Errorf("%w: %s", ErrNotLocal, v)
	}

	index, _ := v.Index()

	if int(index) >= s.NumLocals() {
		return 0, fmt.Errorf(
			"%w: %s, frame has %d", ErrLocalIndexOutOfRange, v, s.NumLocals(),
		)
	}

	return s.fp + localsOffset + 2*int(index), nil
}

func (s *CallStack) ReadLocal(v variable.Variable) (uint16, error) {
	idx, err := s.localIndex(v)

	if err != nil {
		return 0, err
	}

	return encoding.Word(s.buf[:], idx), nil
}

func (s *CallStack) WriteLocal(v variable.Variable, value uint16) error {
	idx, err := s.localIndex(v)

	if err != nil {
		return err
	}

	encoding.PutWord(s.buf[:], idx, value)
	return nil
}

func (s *CallStack) ReturnPC() address.Offset {
	return address.Offset(encoding.LongWord(s.buf[:], s.fp+returnPCOffset))
}

func (s *CallStack) ReturnVariable() variable.Variable {
	return variable.Raw(s.buf[s.fp+returnVarOffset])
}

func (s *CallStack) SavedFramePointer() int {
	return int(encoding.Word(s.buf[:], s.fp+savedFPOffset))
}

func (s *CallStack) NumLocals() int {
	return int(s.buf[s.fp+numLocalsOffset])
}

func (s *CallStack) FramePointer() int {
	return s.fp
}

func (s *CallStack) FrameBase() int {
	return s.s0
}

func (s *CallStack) StackPointer() int {
	return s.sp
}

// Evaluation returns the current frame's evaluation stack, bottom first.
// The slice aliases the stack buffer.
func (s *CallStack) Evaluation() []byte {
	return s.buf[s.s0:s.sp]
}

func (s *CallStack) frameAt(start int) Frame {
	numLocals := int(s.buf[start+numLocalsOffset])
	locals := make([]uint16, numLocals)

	for i := range locals {
		locals[i] = encoding.Word(s.buf[:], start+localsOffset+2*i)
	}

	return Frame{
		Start:     start,
		SavedFP:   int(encoding.Word(s.buf[:], start+savedFPOffset)),
		ReturnPC:  address.Offset(encoding.LongWord(s.buf[:], start+returnPCOffset)),
		ReturnVar: variable.Raw(s.buf[start+returnVarOffset]),
		Locals:    locals,
	}
}

// Frames follows the saved frame pointers from the current frame down to
// the base frame.
func (s *CallStack) Frames() []Frame {
	var frames []Frame

	for start := s.fp; start < Capacity; {
		frame := s.frameAt(start)
		frames = append(frames, frame)
		start = frame.SavedFP
	}

	return frames
}

// Depth is the number of frames above the base frame.
func (s *CallStack) Depth() int {
	return len(s.Frames()) - 1
}
