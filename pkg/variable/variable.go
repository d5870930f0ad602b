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

package variable

import (
	"errors"
	"fmt"
)

var (
	ErrLocalOutOfRange  = errors.New("local variable out of range")
	ErrGlobalOutOfRange = errors.New("global variable out of range")
	ErrNotIndexable     = errors.New("stack variable has no index")
)

// Raw encodings. Local index 0 is raw 0x01, global index 0 is raw 0x10.
const (
	StackRaw       uint8 = 0x00
	LocalStartRaw  uint8 = 0x01
	LocalEndRaw    uint8 = 0x0f
	GlobalStartRaw uint8 = 0x10
	GlobalEndRaw   uint8 = 0xff

	MaxLocal  uint8 = LocalEndRaw - LocalStartRaw
	MaxGlobal uint8 = GlobalEndRaw - GlobalStartRaw
)

// Variable is an operand's storage location encoded in one byte: the
// evaluation stack, a local of the current routine or a global.
type Variable uint8

func Raw(b uint8) Variable {
	return Variable(b)
}

func Stack() Variable {
	return Variable(StackRaw)
}

func Local(index uint8) (Variable, error) {
	if index > MaxLocal {
		return 0, fmt.Errorf("%w: %d", ErrLocalOutOfRange, index)
	}

	return Variable(index + LocalStartRaw), nil
}

func Global(index uint8) (Variable, error) {
	if index > MaxGlobal {
		return 0, fmt.Errorf("%w: %d", ErrGlobalOutOfRange, index)
	}

	return Variable(index + GlobalStartRaw), nil
}

func (v Variable) Byte() uint8 {
	return uint8(v)
}

func (v Variable) IsStack() bool {
	return uint8(v) == StackRaw
}

func (v Variable) IsLocal() bool {
	return uint8(v) >= LocalStartRaw && uint8(v) <= LocalEndRaw
}

func (v Variable) IsGlobal() bool {
	return uint8(v) >= GlobalStartRaw
}

// Index is the logical local or global number.
func (v Variable) Index() (uint8, error) {
	switch {
	case v.IsLocal():
		return uint8(v) - LocalStartRaw, nil
	case v.IsGlobal():
		return uint8(v) - GlobalStartRaw, nil
	default:
		return 0, ErrNotIndexable
	}
}

func (v Variable) String() string {
	switch {
	case v.IsLocal():
		return fmt.Sprintf("L%02x", uint8(v)-LocalStartRaw)
	case v.IsGlobal():
		return fmt.Sprintf("G%02x", uint8(v)-GlobalStartRaw)
	default:
		return "SP"
	}
}
