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
	"fmt"

	"github.com/lassandro/gozzy/pkg/encoding"
)

const padding = 5

// Encode packs s as a z-string using the default alphabet. It never emits
// abbreviations.
func Encode(s string) ([]byte, error) {
	return EncodeWith(DefaultAlphabet, s)
}

func EncodeWith(a *Alphabet, s string) ([]byte, error) {
	var zchars []uint8

	for _, r := range s {
		if r == ' ' {
			zchars = append(zchars, 0)
			continue
		}

		code, ok := FromRune(r)

		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnencodable, r)
		}

		if alphabet, z, found := a.Find(uint8(code)); found {
			if alphabet > 0 {
				zchars = append(zchars, uint8(3+alphabet))
			}
			zchars = append(zchars, z)
			continue
		}

		zchars = append(zchars, 5, 6, uint8(code>>5), uint8(code&zcharMax))
	}

	for len(zchars) == 0 || len(zchars)%3 != 0 {
		zchars = append(zchars, padding)
	}

	buf := make([]byte, 2*len(zchars)/3)

	for i := 0; i < len(zchars); i += 3 {
		word := uint16(zchars[i])<<10 | uint16(zchars[i+1])<<5 | uint16(zchars[i+2])

		if i+3 == len(zchars) {
			word |= endBit
		}

		encoding.PutWord(buf, 2*i/3, word)
	}

	return buf, nil
}
