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

// Package header decodes the 64-byte header at the start of a story.
package header

import (
	"errors"
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/version"
)

// Byte offsets of header fields.
const (
	VersionNumber    address.ByteAddress = 0x00
	Flags1           address.ByteAddress = 0x01
	ReleaseNumber    address.ByteAddress = 0x02
	HighMemoryMark   address.ByteAddress = 0x04
	StartPC          address.ByteAddress = 0x06
	Dictionary       address.ByteAddress = 0x08
	ObjectTable      address.ByteAddress = 0x0a
	GlobalsTable     address.ByteAddress = 0x0c
	StaticMemoryBase address.ByteAddress = 0x0e
	Flags2           address.ByteAddress = 0x10
	SerialNumber     address.ByteAddress = 0x12
	AbbrevTable      address.ByteAddress = 0x18
	FileLength       address.ByteAddress = 0x1a
	Checksum         address.ByteAddress = 0x1c
	AlphabetTable    address.ByteAddress = 0x34

	Size = 0x40

	serialLength = 6
)

var ErrChecksumMismatch = errors.New("checksum mismatch")

type Header struct {
	Version *version.Version

	Release uint16
	Serial  string

	HighMemory  address.ByteAddress
	StartPC     address.ByteAddress
	Dictionary  address.ByteAddress
	ObjectTable address.ByteAddress
	Globals     address.ByteAddress
	StaticBase  address.ByteAddress
	Abbrevs     address.ByteAddress
	Alphabet    address.ByteAddress

	Flags1 uint8
	Flags2 uint16

	// Stored length, before scaling. Zero in some early stories.
	RawFileLength uint16
	Checksum      uint16
}

// Parse reads the header fields through m. The header lies in dynamic
// memory, so checked reads are used throughout.
func Parse(m memory.Memory) (*Header, error) {
	raw, err := m.LoadByte(VersionNumber.Offset())

	if err != nil {
		return nil, err
	}

	v, err := version.Lookup(raw)

	if err != nil {
		return nil, err
	}

	h := &Header{Version: v}

	words := []struct {
		at  address.ByteAddress
		dst *uint16
	}{
		{ReleaseNumber, &h.Release},
		{HighMemoryMark, (*uint16)(&h.HighMemory)},
		{StartPC, (*uint16)(&h.StartPC)},
		{Dictionary, (*uint16)(&h.Dictionary)},
		{ObjectTable, (*uint16)(&h.ObjectTable)},
		{GlobalsTable, (*uint16)(&h.Globals)},
		{StaticMemoryBase, (*uint16)(&h.StaticBase)},
		{Flags2, &h.Flags2},
		{AbbrevTable, (*uint16)(&h.Abbrevs)},
		{FileLength, &h.RawFileLength},
		{Checksum, &h.Checksum},
		{AlphabetTable, (*uint16)(&h.Alphabet)},
	}

	for _, word := range words {
		if *word.dst, err = m.LoadWord(word.at); err != nil {
			return nil, err
		}
	}

	if h.Flags1, err = m.LoadByte(Flags1.Offset()); err != nil {
		return nil, err
	}

	serial := make([]byte, serialLength)

	for i := range serial {
		if serial[i], err = m.LoadByte(SerialNumber.Offset() + address.Offset(i)); err != nil {
			return nil, err
		}
	}

	h.Serial = string(serial)

	return h, nil
}

// FileLength is the story length recorded in the header, in bytes.
func (h *Header) FileLength() int {
	return int(h.RawFileLength) * h.Version.FileLengthScale
}

// ComputeChecksum sums every byte after the header up to the recorded file
// length, modulo 0x10000. High memory is included, so reads are unchecked.
func (h *Header) ComputeChecksum(m memory.Backing) (uint16, error) {
	end := min(h.FileLength(), m.Size())
	sum := uint16(0)

	for offset := address.Offset(Size); offset < address.Offset(end); offset++ {
		b, err := m.LoadByteUnchecked(offset)

		if err != nil {
			return 0, err
		}

		sum += uint16(b)
	}

	return sum, nil
}

// Verify compares the computed checksum with the one in the header.
func (h *Header) Verify(m memory.Backing) error {
	sum, err := h.ComputeChecksum(m)

	if err != nil {
		return err
	}

	if sum != h.Checksum {
		return fmt.Errorf(
			"%w: header %#04x, computed %#04x", ErrChecksumMismatch, h.Checksum, sum,
		)
	}

	return nil
}
