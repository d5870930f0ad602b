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
	"errors"
	"fmt"

	"github.com/lassandro/gozzy/pkg/address"
)

// Header validation
var (
	ErrStoryTooLong          = errors.New("story too long")
	ErrDynamicMemoryTooSmall = errors.New("dynamic memory too small")
	ErrOverlappingRegions    = errors.New("high memory overlaps dynamic memory")
	ErrHeaderTruncated       = errors.New("story shorter than its header")
)

// Access
var (
	ErrReadOutOfBounds = errors.New("read outside dynamic and static memory")
	ErrWriteProtected  = errors.New("write outside dynamic memory")
	ErrOutOfRange      = errors.New("offset beyond end of story")
)

// AccessError records the offset and operation of a failed memory access.
type AccessError struct {
	Op     string
	Offset address.Offset
	Err    error
}

func (err *AccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Offset, err.Err)
}

func (err *AccessError) Unwrap() error {
	return err.Err
}

// Backing is the raw store behind a Memory. Implementations report their
// region map and provide unvalidated access; Checked layers the access
// rules on top.
type Backing interface {
	Size() int

	InDynamic(offset address.Offset) bool
	InStatic(offset address.Offset) bool

	LoadByteUnchecked(offset address.Offset) (uint8, error)
	StoreByteUnchecked(offset address.Offset, value uint8) error

	// SliceAt returns the bytes from offset to the end of the store
	// without copying.
	SliceAt(offset address.Offset) ([]byte, error)
}

// Memory is a Backing with region-checked byte and word access. Words are
// big-endian.
type Memory interface {
	Backing

	LoadByte(offset address.Offset) (uint8, error)
	StoreByte(offset address.Offset, value uint8) error

	LoadWord(at address.Offsetter) (uint16, error)
	StoreWord(at address.Offsetter, value uint16) error
}

// Watcher is notified of every checked access, before it is validated.
type Watcher interface {
	Read(offset address.Offset)
	Write(offset address.Offset)
}

// Range is the half-open interval [Start, End).
type Range struct {
	Start address.Offset
	End   address.Offset
}

func (r Range) Contains(offset address.Offset) bool {
	return offset >= r.Start && offset < r.End
}

func (r Range) Len() int {
	return int(r.End - r.Start)
}

func (r Range) String() string {
	return fmt.Sprintf("[%#05x, %#05x)", int(r.Start), int(r.End))
}
