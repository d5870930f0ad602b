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
	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/version"
)

const (
	AlphabetLen = 26
	alphabets   = 3

	// A2 position 0 is never looked up: z-character 6 in A2 starts a
	// 10-bit ZSCII escape.
	escapePosition  = 2*AlphabetLen + 0
	newlinePosition = 2*AlphabetLen + 1
)

// Alphabet holds the ZSCII codes of A0, A1 and A2 in order.
type Alphabet [alphabets * AlphabetLen]uint8

func (a *Alphabet) Lookup(alphabet int, zchar uint8) uint8 {
	return a[AlphabetLen*alphabet+int(zchar-6)]
}

// Find returns the alphabet and z-character that produce code.
func (a *Alphabet) Find(code uint8) (int, uint8, bool) {
	for i, c := range a {
		if i == escapePosition {
			continue
		}

		if c == code {
			return i / AlphabetLen, uint8(i%AlphabetLen) + 6, true
		}
	}

	return 0, 0, false
}

var DefaultAlphabet = func() *Alphabet {
	var a Alphabet

	copy(a[0:], "abcdefghijklmnopqrstuvwxyz")
	copy(a[AlphabetLen:], "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	copy(a[2*AlphabetLen:], " \n0123456789.,!?_#'\"/\\-:()")

	a[escapePosition] = 0
	a[newlinePosition] = ZSCIINewline

	return &a
}()

// LoadAlphabet returns the alphabet table a story uses. Version 5 stories
// may supply their own table at a non-zero header address; everything else
// uses DefaultAlphabet.
func LoadAlphabet(m memory.Backing, v *version.Version, at address.ByteAddress) (*Alphabet, error) {
	if v.Number < 5 || at == 0 {
		return DefaultAlphabet, nil
	}

	var a Alphabet

	for i := range a {
		b, err := m.LoadByteUnchecked(at.Offset() + address.Offset(i))

		if err != nil {
			return nil, err
		}

		a[i] = b
	}

	a[escapePosition] = 0
	a[newlinePosition] = ZSCIINewline

	return &a, nil
}
