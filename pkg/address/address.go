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

// Package address models the pointer encodings of a story image.
//
// Every encoding resolves to an Offset, an absolute byte position in the
// image. The story format uses three 16-bit encodings: byte addresses,
// word addresses (counting 2-byte words) and packed addresses (scaled by a
// version dependent multiplier, used for routines and strings).
package address

import (
	"fmt"

	"github.com/lassandro/gozzy/pkg/version"
)

// Offset is an absolute byte position in the story image.
type Offset int

// Offsetter is anything that resolves to an Offset.
type Offsetter interface {
	Offset() Offset
}

func (o Offset) Offset() Offset {
	return o
}

// Add returns o advanced by delta. Overflow is not checked.
func (o Offset) Add(delta Offsetter) Offset {
	return o + delta.Offset()
}

func (o Offset) String() string {
	return fmt.Sprintf("ZO:%#x", int(o))
}

// ByteAddress is used directly as an offset.
type ByteAddress uint16

func (a ByteAddress) Offset() Offset {
	return Offset(a)
}

func (a ByteAddress) String() string {
	return fmt.Sprintf("BA:%#04x", uint16(a))
}

// WordAddress counts 2-byte words from the start of the image.
type WordAddress uint16

func (a WordAddress) Offset() Offset {
	return Offset(a) * 2
}

func (a WordAddress) String() string {
	return fmt.Sprintf("WA:%#04x", uint16(a))
}

// PackedAddress points into routine or string space. It has no meaning
// without the version of the story it came from.
type PackedAddress uint16

func (a PackedAddress) RoutineOffset(v *version.Version) Offset {
	return Offset(a) * Offset(v.PackedMultiplier)
}

func (a PackedAddress) StringOffset(v *version.Version) Offset {
	return Offset(a) * Offset(v.PackedMultiplier)
}

func (a PackedAddress) String() string {
	return fmt.Sprintf("PA:%#04x", uint16(a))
}
