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

package text_test

import (
	"io"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gozzy/pkg/abbrev"
	"github.com/lassandro/gozzy/pkg/address"
	"github.com/lassandro/gozzy/pkg/header"
	"github.com/lassandro/gozzy/pkg/memory"
	"github.com/lassandro/gozzy/pkg/story"
	"github.com/lassandro/gozzy/pkg/text"
)

var charlieBrown = []byte{
	0x11, 0x0d, 0x1a, 0xf1, 0x39, 0x40, 0x10, 0xf7, 0x53, 0x93, 0x96, 0xa5,
}

func TestZChars(t *testing.T) {
	_, err := text.NewZChars(nil)
	assert.ErrorIs(t, err, text.ErrEmptyString)

	_, err = text.NewZChars([]byte{0x98})
	assert.ErrorIs(t, err, text.ErrOddLength)

	// The end bit stops the stream even with bytes left over.
	z, err := text.NewZChars([]byte{0x18, 0xe8, 0x98, 0xc6, 0x18, 0xe8})
	require.NoError(t, err)

	var got []uint8
	for c, ok := z.Next(); ok; c, ok = z.Next() {
		got = append(got, c)
	}

	assert.Equal(t, []uint8{6, 7, 8, 6, 6, 6}, got)
	assert.Equal(t, 4, z.Consumed())

	_, ok := z.Next()
	assert.False(t, ok)
}

func TestZCharsWithoutEndBit(t *testing.T) {
	z, err := text.NewZChars([]byte{0x18, 0xe8})
	require.NoError(t, err)

	var got []uint8
	for c, ok := z.Next(); ok; c, ok = z.Next() {
		got = append(got, c)
	}

	assert.Equal(t, []uint8{6, 7, 8}, got)
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  string
	}{
		{"lowercase", []byte{0x98, 0xe8}, "abc"},
		{"repeated", []byte{0x98, 0xc6}, "aaa"},
		{"shift", []byte{0x93, 0xe8}, "Zc"},
		{"spaces", []byte{0x80, 0x00}, "   "},
		{"padding", []byte{0x94, 0xa5}, ""},
		{"newline", []byte{0x94, 0xe5}, "\n"},
		{"shift lasts one character", []byte{0x90, 0xc6}, "Aa"},
		{"escape", []byte{0x14, 0xc2, 0x80, 0xa5}, "@"},
		{"escape without mapping", []byte{0x14, 0xc0, 0x84, 0xa5}, string(utf8.RuneError)},
		{"escaped null", []byte{0x14, 0xc0, 0x80, 0xa5}, ""},
		{"trailing shift", []byte{0x98, 0xc4}, "aa"},
		{"trailing abbreviation", []byte{0x98, 0xc1}, "aa"},
		{"trailing escape", []byte{0x18, 0xc6, 0x98, 0xa6}, "aaaa"},
		{"stops at end bit", []byte{0x98, 0xc6, 0x98, 0xe8}, "aaa"},
		{"runs out", []byte{0x18, 0xc6, 0x18, 0xe8}, "aaaabc"},
		{"mixed", charlieBrown, "Charlie Brown?"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := text.Decode(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := text.Decode(nil)
	assert.ErrorIs(t, err, text.ErrEmptyString)

	_, err = text.Decode([]byte{0x98, 0xc6, 0x00})
	assert.ErrorIs(t, err, text.ErrOddLength)

	_, err = text.Decode([]byte{0x84, 0x05})
	assert.ErrorIs(t, err, text.ErrNoAbbreviations)
}

func TestReader(t *testing.T) {
	r, err := (&text.Decoder{}).NewReader(charlieBrown)
	require.NoError(t, err)

	var got []rune
	for {
		c, size, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, utf8.RuneLen(c), size)
		got = append(got, c)
	}

	assert.Equal(t, "Charlie Brown?", string(got))

	_, _, err = r.ReadRune()
	assert.Equal(t, io.EOF, err)
}

func TestEncode(t *testing.T) {
	got, err := text.Encode("Charlie Brown?")
	require.NoError(t, err)
	assert.Equal(t, charlieBrown, got)

	got, err = text.Encode("aaa")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x98, 0xc6}, got)

	got, err = text.Encode("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x94, 0xa5}, got)

	got, err = text.Encode("@")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x14, 0xc2, 0x80, 0xa5}, got)

	_, err = text.Encode("snow ☃")
	assert.ErrorIs(t, err, text.ErrUnencodable)
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"West of House",
		"You are standing in an open field.\nThere is a mailbox here.",
		"Score: 10/350 (moves: 42)",
		"Grüße, señor! ¿Qué?",
		"a@b{c}~",
	} {
		encoded, err := text.Encode(s)
		require.NoError(t, err, s)

		decoded, err := text.Decode(encoded)
		require.NoError(t, err, s)
		assert.Equal(t, s, decoded)
	}
}

func TestZSCII(t *testing.T) {
	assert.Equal(t, '\n', text.ToRune(13))
	assert.Equal(t, 'A', text.ToRune('A'))
	assert.Equal(t, '~', text.ToRune(126))
	assert.Equal(t, 'ä', text.ToRune(155))
	assert.Equal(t, '¿', text.ToRune(223))
	assert.Equal(t, utf8.RuneError, text.ToRune(0))
	assert.Equal(t, utf8.RuneError, text.ToRune(127))
	assert.Equal(t, utf8.RuneError, text.ToRune(224))

	code, ok := text.FromRune('ß')
	assert.True(t, ok)
	assert.Equal(t, uint16(161), code)

	_, ok = text.FromRune('☃')
	assert.False(t, ok)
}

func abbreviationStory(t *testing.T) (*memory.Story, *abbrev.Table) {
	t.Helper()

	img, err := story.NewBuilder(3, story.DefaultSize).
		Abbreviation(1, 0, 0x380, "the ").
		Abbreviation(2, 5, 0x3a0, "Brown").
		Word(address.Offset(story.DefaultAbbrevs+2), 0x3e0/2).
		Raw(address.Offset(0x3e0), []byte{0x84, 0x05}).
		Raw(address.Offset(0x500), []byte{0x04, 0x08, 0x9b, 0x25}).
		Build()
	require.NoError(t, err)

	s, err := memory.FromBytes(img)
	require.NoError(t, err)

	table, err := abbrev.New(s)
	require.NoError(t, err)

	return s, table
}

func TestDecodeAbbreviations(t *testing.T) {
	s, table := abbreviationStory(t)
	d := &text.Decoder{Memory: s, Abbrevs: table}

	got, err := d.Decode([]byte{0x04, 0x08, 0x9b, 0x25})
	require.NoError(t, err)
	assert.Equal(t, "the cat", got)

	got, err = d.Decode([]byte{0x08, 0xa0, 0x94, 0xa5})
	require.NoError(t, err)
	assert.Equal(t, "Brown ", got)

	got, err = d.DecodeAt(address.Offset(0x500))
	require.NoError(t, err)
	assert.Equal(t, "the cat", got)

	got, err = d.DecodeAt(address.WordAddress(0x3a0 / 2))
	require.NoError(t, err)
	assert.Equal(t, "Brown", got)
}

func TestDecodeNestedAbbreviation(t *testing.T) {
	s, table := abbreviationStory(t)
	d := &text.Decoder{Memory: s, Abbrevs: table}

	_, err := d.Decode([]byte{0x84, 0x25})
	assert.ErrorIs(t, err, text.ErrNestedAbbreviation)
}

func TestLoadAlphabet(t *testing.T) {
	custom := []byte("zyxwvutsrqponmlkjihgfedcba" +
		"ZYXWVUTSRQPONMLKJIHGFEDCBA" +
		"  9876543210.,!?_#'\"/\\-:()")

	b := story.NewBuilder(5, story.DefaultSize).Raw(address.Offset(0x200), custom)
	b.Alphabet = 0x200

	img, err := b.Build()
	require.NoError(t, err)

	s, err := memory.FromBytes(img)
	require.NoError(t, err)

	h, err := header.Parse(s)
	require.NoError(t, err)

	a, err := text.LoadAlphabet(s, s.Version(), h.Alphabet)
	require.NoError(t, err)

	assert.Equal(t, uint8('z'), a.Lookup(0, 6))
	assert.Equal(t, uint8('Y'), a.Lookup(1, 7))
	assert.Equal(t, uint8(13), a.Lookup(2, 7))
	assert.Equal(t, uint8('9'), a.Lookup(2, 8))

	got, err := (&text.Decoder{Alphabet: a}).Decode([]byte{0x98, 0xe8})
	require.NoError(t, err)
	assert.Equal(t, "zyx", got)

	encoded, err := text.EncodeWith(a, "zyx")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x98, 0xe8}, encoded)
}

func TestLoadAlphabetDefault(t *testing.T) {
	b := story.NewBuilder(3, story.DefaultSize)
	b.Alphabet = 0x200

	img, err := b.Build()
	require.NoError(t, err)

	s, err := memory.FromBytes(img)
	require.NoError(t, err)

	a, err := text.LoadAlphabet(s, s.Version(), 0x200)
	require.NoError(t, err)
	assert.Same(t, text.DefaultAlphabet, a)

	s5 := buildV5(t)

	a, err = text.LoadAlphabet(s5, s5.Version(), 0)
	require.NoError(t, err)
	assert.Same(t, text.DefaultAlphabet, a)
}

func buildV5(t *testing.T) *memory.Story {
	t.Helper()

	img, err := story.NewBuilder(5, story.DefaultSize).Build()
	require.NoError(t, err)

	s, err := memory.FromBytes(img)
	require.NoError(t, err)

	return s
}
