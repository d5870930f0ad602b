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

package memory

import (
	"github.com/lassandro/gozzy/pkg/address"
)

// Checked enforces the region rules over any Backing: dynamic and static
// memory may be read, only dynamic memory may be written.
type Checked struct {
	Backing
	Watcher Watcher
}

func NewChecked(backing Backing) *Checked {
	return &Checked{Backing: backing}
}

func (mem *Checked) LoadByte(offset address.Offset) (uint8, error) {
	if mem.Watcher != nil {
		mem.Watcher.Read(offset)
	}

	if !mem.InDynamic(offset) && !mem.InStatic(offset) {
		return 0, &AccessError{"read", offset, ErrReadOutOfBounds}
	}

	return mem.LoadByteUnchecked(offset)
}

func (mem *Checked) StoreByte(offset address.Offset, value uint8) error {
	if mem.Watcher != nil {
		mem.Watcher.Write(offset)
	}

	if !mem.InDynamic(offset) {
		return &AccessError{"write", offset, ErrWriteProtected}
	}

	return mem.StoreByteUnchecked(offset, value)
}

func (mem *Checked) LoadWord(at address.Offsetter) (uint16, error) {
	offset := at.Offset()

	high, err := mem.LoadByte(offset)

	if err != nil {
		return 0, err
	}

	low, err := mem.LoadByte(offset + 1)

	if err != nil {
		return 0, err
	}

	return uint16(high)<<8 | uint16(low), nil
}

// StoreWord writes the high byte first. Both bytes are validated before
// either is written, so a word straddling the end of dynamic memory is left
// untouched.
func (mem *Checked) StoreWord(at address.Offsetter, value uint16) error {
	offset := at.Offset()

	if mem.InDynamic(offset) && !mem.InDynamic(offset+1) {
		return &AccessError{"write", offset + 1, ErrWriteProtected}
	}

	if err := mem.StoreByte(offset, uint8(value>>8)); err != nil {
		return err
	}

	return mem.StoreByte(offset+1, uint8(value&0xFF))
}
