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
	"fmt"
	"io"

	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/encoding"
	"github.com/lassandro/gozzy/pkg/log"
	"github.com/lassandro/gozzy/pkg/version"
)

// Header fields needed to map the regions. The full header lives in
// package header.
const (
	headerVersion     = 0x00
	headerHighMark    = 0x04
	headerStaticStart = 0x0e
	headerSize        = 0x40

	minDynamicSize = 64
	maxStaticEnd   = 0xFFFF
)

// Image is a story held in memory together with its region map.
type Image struct {
	bytes []byte

	Dynamic Range
	Static  Range
	High    address.Offset
}

func (img *Image) Size() int {
	return len(img.bytes)
}

func (img *Image) InDynamic(offset address.Offset) bool {
	return img.Dynamic.Contains(offset)
}

func (img *Image) InStatic(offset address.Offset) bool {
	return img.Static.Contains(offset)
}

func (img *Image) LoadByteUnchecked(offset address.Offset) (uint8, error) {
	if offset < 0 || int(offset) >= len(img.bytes) {
		return 0, &AccessError{"read", offset, ErrOutOfRange}
	}

	return img.bytes[offset], nil
}

func (img *Image) StoreByteUnchecked(offset address.Offset, value uint8) error {
	if offset < 0 || int(offset) >= len(img.bytes) {
		return &AccessError{"write", offset, ErrOutOfRange}
	}

	img.bytes[offset] = value
	return nil
}

func (img *Image) SliceAt(offset address.Offset) ([]byte, error) {
	if offset < 0 || int(offset) > len(img.bytes) {
		return nil, &AccessError{"slice", offset, ErrOutOfRange}
	}

	return img.bytes[offset:], nil
}

// Story is a loaded, validated story image.
type Story struct {
	*Checked

	image   *Image
	version *version.Version
}

func (s *Story) Version() *version.Version {
	return s.version
}

func (s *Story) Image() *Image {
	return s.image
}

// Load reads a complete story image from reader and maps its regions.
func Load(reader io.Reader) (*Story, error) {
	bytes, err := io.ReadAll(reader)

	if err != nil {
		return nil, err
	}

	return FromBytes(bytes)
}

// FromBytes validates and maps a story image. The slice is owned by the
// returned Story.
func FromBytes(bytes []byte) (*Story, error) {
	if len(bytes) < headerSize {
		return nil, fmt.Errorf(
			"%w: %d bytes, header needs %d", ErrHeaderTruncated, len(bytes), headerSize,
		)
	}

	v, err := version.Lookup(bytes[headerVersion])

	if err != nil {
		return nil, err
	}

	if len(bytes) > v.MaxStoryLen {
		return nil, fmt.Errorf(
			"%w: max %d, actual %d", ErrStoryTooLong, v.MaxStoryLen, len(bytes),
		)
	}

	staticStart := address.Offset(encoding.Word(bytes, headerStaticStart))
	highMark := address.Offset(encoding.Word(bytes, headerHighMark))
	staticEnd := address.Offset(min(maxStaticEnd, len(bytes)))

	if staticStart < minDynamicSize {
		return nil, fmt.Errorf(
			"%w: must contain at least %d bytes, contains %d",
			ErrDynamicMemoryTooSmall,
			minDynamicSize,
			int(staticStart),
		)
	}

	if highMark < staticStart {
		return nil, fmt.Errorf(
			"%w: high memory begins at %#x, dynamic memory ends at %#x",
			ErrOverlappingRegions,
			int(highMark),
			int(staticStart)-1,
		)
	}

	image := &Image{
		bytes:   bytes,
		Dynamic: Range{0, staticStart},
		Static:  Range{staticStart, staticEnd},
		High:    highMark,
	}

	log.Debug(
		log.MemoryModule, "story loaded",
		"version", v.Number,
		"size", len(bytes),
		"dynamic", image.Dynamic,
		"static", image.Static,
		"high", image.High,
	)

	return &Story{
		Checked: NewChecked(image),
		image:   image,
		version: v,
	}, nil
}
