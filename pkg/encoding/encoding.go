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

package encoding

import (
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return int(result), nil
}

// Decodes either a hex string or a base-10 string as a 16-bit word. Negative
// base-10 values are stored in two's complement.
func DecodeWord(s string) (uint16, error) {
	if value, err := DecodeHex(s); err == nil {
		return value, nil
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	if value < -0x8000 || value > 0xFFFF {
		return 0, errors.New("Value does not fit in a word")
	}

	return uint16(value), nil
}

// Interprets a word as a signed two's complement number
func Signed(value uint16) int16 {
	return int16(value)
}

// Word, PutWord, LongWord and PutLongWord are big-endian and expect the
// caller to have validated idx against len(buf).

func Word(buf []byte, idx int) uint16 {
	return binary.BigEndian.Uint16(buf[idx:])
}

func PutWord(buf []byte, idx int, value uint16) {
	binary.BigEndian.PutUint16(buf[idx:], value)
}

func LongWord(buf []byte, idx int) uint32 {
	return uint32(Word(buf, idx))<<16 | uint32(Word(buf, idx+2))
}

func PutLongWord(buf []byte, idx int, value uint32) {
	PutWord(buf, idx, uint16(value>>16))
	PutWord(buf, idx+2, uint16(value&0xFFFF))
}
