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

package text

import (
	"errors"

	"github.com/lassandro/gozzy/pkg/encoding"
)

var (
	ErrEmptyString        = errors.New("empty z-string")
	ErrOddLength          = errors.New("z-string must have an even number of bytes")
	ErrNoAbbreviations    = errors.New("abbreviation used without an abbreviation table")
	ErrNestedAbbreviation = errors.New("abbreviation inside an abbreviation")
	ErrUnencodable        = errors.New("character has no ZSCII encoding")
)

const (
	endBit   = 0x8000
	zcharMax = 0x1f
)

// ZChars unpacks 5-bit z-characters from big-endian words, three per word.
// It stops after the word with the top bit set, or when the bytes run out,
// and cannot be rewound.
type ZChars struct {
	buf  []byte
	pos  int
	word uint16
	left int
	done bool
}

func NewZChars(buf []byte) (*ZChars, error) {
	if len(buf) == 0 {
		return nil, ErrEmptyString
	}

	if len(buf)%2 != 0 {
		return nil, ErrOddLength
	}

	return &ZChars{buf: buf}, nil
}

// Next returns the next z-character, or false once the string has ended.
func (z *ZChars) Next() (uint8, bool) {
	if z.left == 0 {
		if z.done || z.pos+2 > len(z.buf) {
			z.done = true
			return 0, false
		}

		z.word = encoding.Word(z.buf, z.pos)
		z.pos += 2
		z.left = 3
	}

	z.left--
	c := uint8(z.word>>(5*z.left)) & zcharMax

	if z.left == 0 && z.word&endBit != 0 {
		z.done = true
	}

	return c, true
}

// Consumed is the number of bytes read so far.
func (z *ZChars) Consumed() int {
	return z.pos
}
