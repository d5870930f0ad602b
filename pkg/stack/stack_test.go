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

package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/stack"
	"github.com/lassandro/gozzy/pkg/variable"
)

func local(t *testing.T, i uint8) variable.Variable {
	t.Helper()

	v, err := variable.Local(i)
	require.NoError(t, err)
	return v
}

func global(t *testing.T, i uint8) variable.Variable {
	t.Helper()

	v, err := variable.Global(i)
	require.NoError(t, err)
	return v
}

func assertLocals(t *testing.T, s stack.Stack, want ...uint16) {
	t.Helper()

	for i, value := range want {
		have, err := s.ReadLocal(local(t, uint8(i)))
		require.NoError(t, err)

		if have != value {
			t.Errorf("Local mismatch (L%02x)\nwant:%#04x\nhave:%#04x", i, value, have)
		}
	}
}

func TestNewStack(t *testing.T) {
	s := stack.New()

	assert.Equal(t, 0, s.FramePointer())
	assert.Equal(t, stack.HeaderSize, s.StackPointer())
	assert.Equal(t, stack.HeaderSize, s.FrameBase())
	assert.Equal(t, stack.Capacity, s.SavedFramePointer())
	assert.Equal(t, address.Offset(0), s.ReturnPC())
	assert.Equal(t, variable.Stack(), s.ReturnVariable())
	assert.Equal(t, 0, s.NumLocals())
	assert.Equal(t, 0, s.Depth())
}

func TestPushPopByte(t *testing.T) {
	s := stack.New()
	start := s.StackPointer()

	require.NoError(t, s.PushByte(0x12))
	require.NoError(t, s.PushByte(0x34))
	require.NoError(t, s.PushByte(0x56))

	assert.Equal(t, []byte{0x12, 0x34, 0x56}, s.Evaluation())

	have, err := s.PopByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x56), have)
	assert.Equal(t, []byte{0x12, 0x34}, s.Evaluation())

	have, err = s.PopByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x34), have)

	have, err = s.PopByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), have)
	assert.Empty(t, s.Evaluation())

	assert.Equal(t, start, s.StackPointer())

	_, err = s.PopByte()
	assert.ErrorIs(t, err, stack.ErrStackUnderflow)
}

func TestPushPopWord(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushWord(0x1234))
	require.NoError(t, s.PushWord(0x5678))

	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, s.Evaluation())

	have, err := s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x5678), have)

	have, err = s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), have)

	_, err = s.PopWord()
	assert.ErrorIs(t, err, stack.ErrStackUnderflow)

	require.NoError(t, s.PushByte(1))
	_, err = s.PopWord()
	assert.ErrorIs(t, err, stack.ErrStackUnderflow)
}

func TestByteOverflow(t *testing.T) {
	s := stack.New()

	for s.StackPointer() < stack.Capacity {
		require.NoError(t, s.PushByte(0xAA))
	}

	assert.ErrorIs(t, s.PushByte(0xAA), stack.ErrStackOverflow)
	assert.ErrorIs(t, s.PushWord(0xAAAA), stack.ErrStackOverflow)

	_, err := s.PopByte()
	require.NoError(t, err)
	assert.ErrorIs(t, s.PushWord(0xAAAA), stack.ErrStackOverflow)
	assert.NoError(t, s.PushByte(0xAA))
}

func TestPushPopFrame(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushByte(0x12))
	require.NoError(t, s.PushByte(0x34))
	require.NoError(t, s.PushByte(0x56))

	savedFP1 := s.FramePointer()
	savedSP1 := s.StackPointer()

	require.NoError(t, s.PushFrame(
		address.Offset(0xdeafd00d), 5, global(t, 3), []uint16{34, 38},
	))

	savedFP2 := s.FramePointer()
	assert.Equal(t, savedSP1, savedFP2)

	require.NoError(t, s.PushFrame(
		address.Offset(0xbabef00d), 7, local(t, 5), []uint16{1, 3, 5},
	))

	assert.Equal(t, savedFP2, s.SavedFramePointer())
	assert.Equal(t, address.Offset(0xbabef00d), s.ReturnPC())
	assert.Equal(t, local(t, 5), s.ReturnVariable())
	assert.Equal(t, 7, s.NumLocals())
	assertLocals(t, s, 1, 3, 5, 0, 0, 0, 0)
	assert.Equal(t, 2, s.Depth())

	require.NoError(t, s.PopFrame())

	assert.Equal(t, savedFP2, s.FramePointer())
	assert.Equal(t, savedFP1, s.SavedFramePointer())
	assert.Equal(t, address.Offset(0xdeafd00d), s.ReturnPC())
	assert.Equal(t, global(t, 3), s.ReturnVariable())
	assert.Equal(t, 5, s.NumLocals())
	assertLocals(t, s, 34, 38, 0, 0, 0)

	require.NoError(t, s.PopFrame())

	assert.Equal(t, savedSP1, s.StackPointer())

	for _, want := range []uint8{0x56, 0x34, 0x12} {
		have, err := s.PopByte()
		require.NoError(t, err)
		assert.Equal(t, want, have)
	}
}

func TestEvaluationDoesNotDisturbLocals(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushFrame(0x1000, 2, variable.Stack(), []uint16{7, 9}))

	require.NoError(t, s.PushWord(0xFFFF))
	require.NoError(t, s.PushWord(0xEEEE))
	require.NoError(t, s.WriteLocal(local(t, 1), 0x4242))

	assertLocals(t, s, 7, 0x4242)

	have, err := s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xEEEE), have)

	have, err = s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), have)

	// The frame's locals are not part of its evaluation stack.
	_, err = s.PopWord()
	assert.ErrorIs(t, err, stack.ErrStackUnderflow)
	assertLocals(t, s, 7, 0x4242)
}

func TestPopFrameDiscardsEvaluation(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushWord(0x0102))
	require.NoError(t, s.PushFrame(0x2000, 1, variable.Stack(), nil))
	require.NoError(t, s.PushWord(0x0304))
	require.NoError(t, s.PopFrame())

	have, err := s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), have)
}

func TestPushTooManyOperands(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushFrame(
		address.Offset(0xbabef00d), 2, variable.Stack(), []uint16{11, 24, 36, 48},
	))

	assert.Equal(t, 2, s.NumLocals())
	assertLocals(t, s, 11, 24)

	// Only the declared locals were laid out.
	assert.Equal(t, s.FramePointer()+stack.HeaderSize+4, s.StackPointer())
	assert.Empty(t, s.Evaluation())
}

func TestLocalRangeCheck(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushFrame(
		address.Offset(0xbabef00d), 1, variable.Stack(), []uint16{22},
	))

	assertLocals(t, s, 22)

	_, err := s.ReadLocal(local(t, 1))
	assert.ErrorIs(t, err, stack.ErrLocalIndexOutOfRange)
	assert.ErrorIs(t, s.WriteLocal(local(t, 1), 5), stack.ErrLocalIndexOutOfRange)

	_, err = s.ReadLocal(global(t, 0))
	assert.ErrorIs(t, err, stack.ErrNotLocal)
	assert.ErrorIs(t, s.WriteLocal(variable.Stack(), 5), stack.ErrNotLocal)
}

func TestBaseFrameHasNoLocals(t *testing.T) {
	s := stack.New()

	_, err := s.ReadLocal(local(t, 0))
	assert.ErrorIs(t, err, stack.ErrLocalIndexOutOfRange)
}

func TestPopBaseFrame(t *testing.T) {
	s := stack.New()
	assert.ErrorIs(t, s.PopFrame(), stack.ErrCannotPopBaseFrame)

	require.NoError(t, s.PushFrame(0x10, 0, variable.Stack(), nil))
	require.NoError(t, s.PopFrame())
	assert.ErrorIs(t, s.PopFrame(), stack.ErrCannotPopBaseFrame)
}

func TestFrameOverflow(t *testing.T) {
	s := stack.New()

	// 170 frames with 8 locals are as many as fit.
	for i := 0; i < 170; i++ {
		require.NoError(t, s.PushFrame(0x1000, 8, variable.Stack(), nil), "frame %d", i)
	}

	sp := s.StackPointer()
	fp := s.FramePointer()

	err := s.PushFrame(0x2000, 8, variable.Stack(), nil)
	assert.ErrorIs(t, err, stack.ErrStackOverflow)

	// A rejected frame leaves nothing behind.
	assert.Equal(t, sp, s.StackPointer())
	assert.Equal(t, fp, s.FramePointer())
	assert.Equal(t, address.Offset(0x1000), s.ReturnPC())
	assert.Equal(t, 170, s.Depth())
}

func TestFrameLimits(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushFrame(0x10, 15, variable.Stack(), nil))
	assertLocals(t, s, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	err := s.PushFrame(0x10, 16, variable.Stack(), nil)
	assert.ErrorIs(t, err, stack.ErrTooManyLocals)

	err = s.PushFrame(address.Offset(0x100000000), 0, variable.Stack(), nil)
	assert.ErrorIs(t, err, stack.ErrReturnPCTooLarge)
}

func TestFrames(t *testing.T) {
	s := stack.New()

	require.NoError(t, s.PushFrame(0x10203040, 5, variable.Stack(), nil))
	require.NoError(t, s.PushFrame(0x22446680, 2, global(t, 0xef), []uint16{0x1357}))

	frames := s.Frames()
	require.Len(t, frames, 3)

	assert.Equal(t, 0x1a, frames[0].Start)
	assert.Equal(t, 0x08, frames[0].SavedFP)
	assert.Equal(t, address.Offset(0x22446680), frames[0].ReturnPC)
	assert.Equal(t, variable.Raw(0xff), frames[0].ReturnVar)
	assert.Equal(t, []uint16{0x1357, 0}, frames[0].Locals)

	assert.Equal(t, 0x08, frames[1].Start)
	assert.Equal(t, 0x00, frames[1].SavedFP)
	assert.Equal(t, address.Offset(0x10203040), frames[1].ReturnPC)
	assert.Len(t, frames[1].Locals, 5)

	assert.Equal(t, 0, frames[2].Start)
	assert.True(t, frames[2].IsBase())
	assert.False(t, frames[0].IsBase())
}
