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
	"unicode/utf8"
)

const (
	ZSCIINull    = 0
	ZSCIINewline = 13

	extraStart = 155
)

// Default mapping for ZSCII 155 onwards.
var extraCharacters = []rune(
	"äöüÄÖÜß»«ëïÿËÏáéíóúýÁÉÍÓÚÝàèìòùÀÈÌÒÙâêîôûÂÊÎÔÛåÅøØãñõÃÑÕæÆçÇþðÞÐ£œŒ¡¿",
)

var fromUnicode = map[rune]uint16{}

func init() {
	for i, r := range extraCharacters {
		fromUnicode[r] = uint16(extraStart + i)
	}
}

// ToRune maps an output ZSCII code to Unicode. Codes with no mapping,
// including null, give utf8.RuneError.
func ToRune(code uint16) rune {
	switch {
	case code == ZSCIINewline:
		return '\n'
	case code >= 32 && code <= 126:
		return rune(code)
	case code >= extraStart && int(code) < extraStart+len(extraCharacters):
		return extraCharacters[code-extraStart]
	default:
		return utf8.RuneError
	}
}

// FromRune is the inverse of ToRune.
func FromRune(r rune) (uint16, bool) {
	switch {
	case r == '\n':
		return ZSCIINewline, true
	case r >= 32 && r <= 126:
		return uint16(r), true
	}

	code, ok := fromUnicode[r]
	return code, ok
}
