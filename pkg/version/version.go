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

// Package version holds the per-version constants of the story format.
package version

import (
	"errors"
	"fmt"
)

var ErrUnsupportedVersion = errors.New("unsupported story version")

type Version struct {
	Number uint8

	// Largest story image, in bytes, that the version can address.
	MaxStoryLen int

	// Scale applied to packed routine and string addresses.
	PackedMultiplier int

	// Scale applied to the file length stored in the header.
	FileLengthScale int
}

func (v *Version) String() string {
	return fmt.Sprintf("Version %d", v.Number)
}

// Adding a version is a matter of adding an entry here.
var versions = []Version{
	{Number: 3, MaxStoryLen: 128 * 1024, PackedMultiplier: 2, FileLengthScale: 2},
	{Number: 5, MaxStoryLen: 256 * 1024, PackedMultiplier: 4, FileLengthScale: 4},
}

// Lookup returns the Version for a header version number.
func Lookup(number uint8) (*Version, error) {
	for i := range versions {
		if versions[i].Number == number {
			return &versions[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, number)
}

// Supported lists the implemented version numbers in ascending order.
func Supported() []uint8 {
	result := make([]uint8, 0, len(versions))

	for _, v := range versions {
		result = append(result, v.Number)
	}

	return result
}
