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
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/log"
	"github.com/lassandro/gozzy/pkg/memory"
)

// Abbreviations resolves an abbreviation escape to the string it stands
// for.
type Abbreviations interface {
	Location(table, index uint8) (address.WordAddress, error)
}

// Decoder turns z-strings into Unicode text. Memory and Abbrevs are only
// needed for strings that use abbreviations; a nil Alphabet means
// DefaultAlphabet.
type Decoder struct {
	Memory   memory.Backing
	Abbrevs  Abbreviations
	Alphabet *Alphabet
}

// Reader produces the characters of one z-string on demand.
type Reader struct {
	decoder *Decoder
	zchars  *ZChars
	nested  bool

	alphabet int
	pending  []rune
	err      error
}

func (d *Decoder) alphabetTable() *Alphabet {
	if d.Alphabet == nil {
		return DefaultAlphabet
	}
	return d.Alphabet
}

func (d *Decoder) NewReader(buf []byte) (*Reader, error) {
	zchars, err := NewZChars(buf)

	if err != nil {
		return nil, err
	}

	return &Reader{decoder: d, zchars: zchars}, nil
}

func (d *Decoder) Decode(buf []byte) (string, error) {
	r, err := d.NewReader(buf)

	if err != nil {
		return "", err
	}

	return readAll(r)
}

// DecodeAt decodes the string starting at at. The string runs until its
// end bit, so the rest of the image is handed over without copying.
func (d *Decoder) DecodeAt(at address.Offsetter) (string, error) {
	buf, err := d.slice(at.Offset())

	if err != nil {
		return "", err
	}

	return d.Decode(buf)
}

func (d *Decoder) slice(offset address.Offset) ([]byte, error) {
	if d.Memory == nil {
		return nil, fmt.Errorf("decode at %s: no memory", offset)
	}

	buf, err := d.Memory.SliceAt(offset)

	if err != nil {
		return nil, err
	}

	return buf[:len(buf)&^1], nil
}

// Decode decodes buf with the default alphabet and no abbreviations.
func Decode(buf []byte) (string, error) {
	return (&Decoder{}).Decode(buf)
}

func readAll(r *Reader) (string, error) {
	var sb strings.Builder

	for {
		c, _, err := r.ReadRune()

		if err == io.EOF {
			return sb.String(), nil
		} else if err != nil {
			return "", err
		}

		sb.WriteRune(c)
	}
}

// ReadRune implements io.RuneReader. Characters without a Unicode mapping
// come back as utf8.RuneError.
func (r *Reader) ReadRune() (rune, int, error) {
	if r.err != nil {
		return 0, 0, r.err
	}

	for {
		if len(r.pending) > 0 {
			c := r.pending[0]
			r.pending = r.pending[1:]
			return c, utf8.RuneLen(c), nil
		}

		z, ok := r.zchars.Next()

		if !ok {
			r.err = io.EOF
			return 0, 0, r.err
		}

		code, emit, err := r.step(z)

		if err != nil {
			r.err = err
			return 0, 0, err
		}

		if emit && code != ZSCIINull {
			c := ToRune(code)
			return c, utf8.RuneLen(c), nil
		}
	}
}

// step feeds one z-character through the shift state machine and reports
// the ZSCII code it completes, if any. Constructs cut short by the end of
// the string are dropped.
func (r *Reader) step(z uint8) (uint16, bool, error) {
	alphabet := r.alphabet
	r.alphabet = 0

	switch {
	case z == 0:
		return ' ', true, nil

	case z <= 3:
		index, ok := r.zchars.Next()

		if !ok {
			return 0, false, nil
		}

		return 0, false, r.expand(z, index)

	case z == 4:
		r.alphabet = 1
		return 0, false, nil

	case z == 5:
		r.alphabet = 2
		return 0, false, nil

	case z == 6 && alphabet == 2:
		high, ok := r.zchars.Next()

		if !ok {
			return 0, false, nil
		}

		low, ok := r.zchars.Next()

		if !ok {
			return 0, false, nil
		}

		return uint16(high)<<5 | uint16(low), true, nil

	case z <= zcharMax:
		return uint16(r.decoder.alphabetTable().Lookup(alphabet, z)), true, nil

	default:
		panic(fmt.Sprintf("z-character out of range: %d", z))
	}
}

func (r *Reader) expand(table, index uint8) error {
	if r.nested {
		return fmt.Errorf("%w: table %d, index %d", ErrNestedAbbreviation, table, index)
	}

	d := r.decoder

	if d.Abbrevs == nil || d.Memory == nil {
		return ErrNoAbbreviations
	}

	location, err := d.Abbrevs.Location(table, index)

	if err != nil {
		return err
	}

	buf, err := d.slice(location.Offset())

	if err != nil {
		return err
	}

	sub, err := d.NewReader(buf)

	if err != nil {
		return err
	}

	sub.nested = true

	expansion, err := readAll(sub)

	if err != nil {
		return err
	}

	log.Trace(
		log.TextModule, "abbreviation",
		"table", table,
		"index", index,
		"location", location,
		"text", expansion,
	)

	r.pending = []rune(expansion)
	return nil
}
