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

package abbrev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gozzy/pkg/abbrev"
	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/story"
)

func load(t *testing.T, b *story.Builder) *memory.Story {
	t.Helper()

	img, err := b.Build()
	require.NoError(t, err)

	s, err := memory.FromBytes(img)
	require.NoError(t, err)

	return s
}

func TestLocation(t *testing.T) {
	s := load(t, story.NewBuilder(3, story.DefaultSize).
		Abbreviation(1, 0, 0x380, "the ").
		Abbreviation(2, 31, 0x390, "aaa").
		Abbreviation(3, 7, 0x3a0, "abc"))

	table, err := abbrev.New(s)
	require.NoError(t, err)
	assert.Equal(t, address.Offset(story.DefaultAbbrevs), table.Base())

	location, err := table.Location(1, 0)
	require.NoError(t, err)
	assert.Equal(t, address.WordAddress(0x1c0), location)
	assert.Equal(t, address.Offset(0x380), location.Offset())

	location, err = table.Location(2, 31)
	require.NoError(t, err)
	assert.Equal(t, address.Offset(0x390), location.Offset())

	location, err = table.Location(3, 7)
	require.NoError(t, err)
	assert.Equal(t, address.Offset(0x3a0), location.Offset())

	location, err = table.Location(3, 8)
	require.NoError(t, err)
	assert.Equal(t, address.WordAddress(0), location)
}

func TestLocationOutOfRange(t *testing.T) {
	s := load(t, story.NewBuilder(3, story.DefaultSize))

	table, err := abbrev.New(s)
	require.NoError(t, err)

	_, err = table.Location(0, 0)
	assert.ErrorIs(t, err, abbrev.ErrTableOutOfRange)

	_, err = table.Location(4, 0)
	assert.ErrorIs(t, err, abbrev.ErrTableOutOfRange)

	_, err = table.Location(1, 32)
	assert.ErrorIs(t, err, abbrev.ErrIndexOutOfRange)
}

func TestTablePastEnd(t *testing.T) {
	b := story.NewBuilder(3, story.DefaultSize)
	b.Abbrevs = story.DefaultSize - 2

	table, err := abbrev.New(load(t, b))
	require.NoError(t, err)

	_, err = table.Location(1, 0)
	require.NoError(t, err)

	_, err = table.Location(1, 1)
	assert.ErrorIs(t, err, memory.ErrReadOutOfBounds)
}
