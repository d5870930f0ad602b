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

// Package story assembles story images from parts, for tests and fixtures.
package story

import (
	"errors"
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/encoding"
	"github.com/lassandro/gozzy/pkg/header"
	"github.com/lassandro/gozzy/pkg/text"
	"github.com/lassandro/gozzy/pkg/version"
)

// ErrLengthOverflow is returned by Build when the image is too long for
// the header's file length field.
var ErrLengthOverflow = errors.New("image too long for the file length field")

// Default layout of a built image.
const (
	DefaultSize        = 0x800
	DefaultGlobals     = 0x40
	DefaultStaticStart = 0x300
	DefaultAbbrevs     = 0x300
	DefaultHighMark    = 0x400
	DefaultStartPC     = 0x400
)

// Builder lays out a story image. Setters record the first error, which
// Build reports.
type Builder struct {
	Version     uint8
	Release     uint16
	Serial      string
	StaticStart uint16
	HighMark    uint16
	StartPC     uint16
	Globals     uint16
	Abbrevs     uint16
	Alphabet    uint16

	// Checksum is computed by Build unless set.
	Checksum *uint16

	buf []byte
	err error
}

func NewBuilder(versionNumber uint8, size int) *Builder {
	return &Builder{
		Version:     versionNumber,
		Serial:      "210101",
		StaticStart: DefaultStaticStart,
		HighMark:    DefaultHighMark,
		StartPC:     DefaultStartPC,
		Globals:     DefaultGlobals,
		Abbrevs:     DefaultAbbrevs,
		buf:         make([]byte, size),
	}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) fits(at address.Offset, n int) bool {
	if at < 0 || int(at)+n > len(b.buf) {
		b.fail(fmt.Errorf("%d bytes at %s do not fit in %d", n, at, len(b.buf)))
		return false
	}
	return true
}

func (b *Builder) Byte(at address.Offsetter, value uint8) *Builder {
	if b.fits(at.Offset(), 1) {
		b.buf[at.Offset()] = value
	}
	return b
}

func (b *Builder) Word(at address.Offsetter, value uint16) *Builder {
	if b.fits(at.Offset(), 2) {
		encoding.PutWord(b.buf, int(at.Offset()), value)
	}
	return b
}

func (b *Builder) Raw(at address.Offsetter, data []byte) *Builder {
	if b.fits(at.Offset(), len(data)) {
		copy(b.buf[at.Offset():], data)
	}
	return b
}

// Text encodes s and places it at at.
func (b *Builder) Text(at address.Offsetter, s string) *Builder {
	data, err := text.Encode(s)

	if err != nil {
		return b.fail(err)
	}

	return b.Raw(at, data)
}

// Global sets global variable index to value.
func (b *Builder) Global(index uint8, value uint16) *Builder {
	return b.Word(address.Offset(b.Globals)+address.Offset(2*int(index)), value)
}

// Abbreviation points entry (table, index) at a string placed at at, which
// must be word aligned.
func (b *Builder) Abbreviation(table, index uint8, at address.Offset, s string) *Builder {
	if at%2 != 0 {
		return b.fail(fmt.Errorf("abbreviation at %s is not word aligned", at))
	}

	if table < 1 || table > 3 || index >= 32 {
		return b.fail(fmt.Errorf("no abbreviation entry %d/%d", table, index))
	}

	entry := address.Offset(b.Abbrevs) + address.Offset(2*(32*int(table-1)+int(index)))

	return b.Word(entry, uint16(at/2)).Text(at, s)
}

// Build fills in the header and returns the image.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.buf) < header.Size {
		return nil, errors.New("image smaller than its header")
	}

	if len(b.Serial) != 6 {
		return nil, fmt.Errorf("serial %q is not 6 characters", b.Serial)
	}

	b.buf[header.VersionNumber] = b.Version
	encoding.PutWord(b.buf, int(header.ReleaseNumber), b.Release)
	encoding.PutWord(b.buf, int(header.HighMemoryMark), b.HighMark)
	encoding.PutWord(b.buf, int(header.StartPC), b.StartPC)
	encoding.PutWord(b.buf, int(header.GlobalsTable), b.Globals)
	encoding.PutWord(b.buf, int(header.StaticMemoryBase), b.StaticStart)
	encoding.PutWord(b.buf, int(header.AbbrevTable), b.Abbrevs)
	encoding.PutWord(b.buf, int(header.AlphabetTable), b.Alphabet)
	copy(b.buf[header.SerialNumber:], b.Serial)

	// Unsupported versions are still built, for loader tests.
	scale := 2
	if v, err := version.Lookup(b.Version); err == nil {
		scale = v.FileLengthScale
	}

	length := len(b.buf) / scale

	if length > 0xFFFF {
		return nil, fmt.Errorf(
			"%w: %d bytes, version %d records at most %d",
			ErrLengthOverflow, len(b.buf), b.Version, 0xFFFF*scale,
		)
	}

	encoding.PutWord(b.buf, int(header.FileLength), uint16(length))

	checksum := uint16(0)
	for _, c := range b.buf[header.Size:] {
		checksum += uint16(c)
	}

	if b.Checksum != nil {
		checksum = *b.Checksum
	}
	encoding.PutWord(b.buf, int(header.Checksum), checksum)

	return b.buf, nil
}
