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
	"errors"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/variable"
)

var (
	ErrStackOverflow        = errors.New("stack overflow")
	ErrStackUnderflow       = errors.New("stack underflow")
	ErrCannotPopBaseFrame   = errors.New("cannot pop the base frame")
	ErrLocalIndexOutOfRange = errors.New("local index out of range for frame")
	ErrNotLocal             = errors.New("variable is not a local")
	ErrTooManyLocals        = errors.New("too many locals for a frame")
	ErrReturnPCTooLarge     = errors.New("return pc does not fit in a frame")
)

// Capacity is the size of the stack buffer. Every frame index fits in the
// 16-bit saved frame pointer, and Capacity itself is the "no caller" marker.
const Capacity = 4096

// MaxLocals is the most locals a routine can declare.
const MaxLocals = int(variable.MaxLocal) + 1

// Frame header layout:
//
//	saved_fp    2 bytes  start of the caller's frame, Capacity for the base frame
//	return_pc   4 bytes  high word first
//	return_var  1 byte   encoded Variable receiving the result
//	num_locals  1 byte
//	locals      2 bytes each
const (
	savedFPOffset   = 0
	returnPCOffset  = 2
	returnVarOffset = 6
	numLocalsOffset = 7
	localsOffset    = 8

	HeaderSize = localsOffset
)

// Stack is an evaluation stack that also stores the frames of active
// routines.
type Stack interface {
	PushByte(value uint8) error
	PopByte() (uint8, error)
	PushWord(value uint16) error
	PopWord() (uint16, error)

	PushFrame(
		returnPC address.Offset,
		numLocals uint8,
		returnVar variable.Variable,
		operands []uint16,
	) error
	PopFrame() error

	ReadLocal(v variable.Variable) (uint16, error)
	WriteLocal(v variable.Variable, value uint16) error

	ReturnPC() address.Offset
	ReturnVariable() variable.Variable

	// Depth is the number of frames above the base frame.
	Depth() int
}

// Inspector exposes the layout of a stack for display.
type Inspector interface {
	Depth() int
	Frames() []Frame
	FramePointer() int
	StackPointer() int
	Evaluation() []byte
}

var (
	_ Stack     = (*CallStack)(nil)
	_ Inspector = (*CallStack)(nil)
)

// Frame is a decoded frame header.
type Frame struct {
	Start     int
	SavedFP   int
	ReturnPC  address.Offset
	ReturnVar variable.Variable
	Locals    []uint16
}

func (f *Frame) IsBase() bool {
	return f.SavedFP == Capacity
}
