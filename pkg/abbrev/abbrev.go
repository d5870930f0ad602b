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

package abbrev

import (
	"errors"
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/header"
	"github.com/lassandro/gozzy/pkg/memory"
)

var (
	ErrTableOutOfRange = errors.New("abbreviation table out of range")
	ErrIndexOutOfRange = errors.New("abbreviation index out of range")
)

const (
	Tables   = 3
	PerTable = 32
	Count    = Tables * PerTable
)

// Table locates abbreviation strings. The story holds 96 word addresses,
// 32 for each of the escape codes 1, 2 and 3.
type Table struct {
	mem  memory.Memory
	base address.Offset
}

// New reads the table location from the header.
func New(m memory.Memory) (*Table, error) {
	base, err := m.LoadWord(header.AbbrevTable)

	if err != nil {
		return nil, err
	}

	return &Table{mem: m, base: address.ByteAddress(base).Offset()}, nil
}

func (t *Table) Base() address.Offset {
	return t.base
}

// Location returns the word address of abbreviation index in table (1-3).
func (t *Table) Location(table, index uint8) (address.WordAddress, error) {
	if table < 1 || table > Tables {
		return 0, fmt.Errorf("%w: %d, legal range is [1,%d]", ErrTableOutOfRange, table, Tables)
	}

	if index >= PerTable {
		return 0, fmt.Errorf("%w: %d, legal range is [0,%d)", ErrIndexOutOfRange, index, PerTable)
	}

	entry := t.base + address.Offset(2*(PerTable*int(table-1)+int(index)))
	location, err := t.mem.LoadWord(entry)

	if err != nil {
		return 0, err
	}

	return address.WordAddress(location), nil
}
