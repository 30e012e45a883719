package bitfield

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSingleBit(t *testing.T) {
	require.True(t, Bit(0b10, 1))
	require.False(t, Bit(0b10, 0))
}

func TestExtractSpan(t *testing.T) {
	// 0b0000_0000_0000_0000_0000_0000_0010_1100: bits [2..6) = 0b1011 = 11
	word := uint32(0b0010_1100)
	require.Equal(t, uint32(0b1011), Extract(word, 2, 4))
}

func TestUnpackEncodedEntryLayout(t *testing.T) {
	table := []Field{
		{Name: "compressionBlockSize", Offset: 0, Length: 6},
		{Name: "compressionBlockCount", Offset: 6, Length: 16},
		{Name: "encrypted", Offset: 22, Length: 1},
		{Name: "compressionMethodIndex", Offset: 23, Length: 6},
		{Name: "size32Safe", Offset: 29, Length: 1},
		{Name: "uncompressedSize32Safe", Offset: 30, Length: 1},
		{Name: "offset32Safe", Offset: 31, Length: 1},
	}

	var word uint32
	word |= 10                 // compressionBlockSize
	word |= 3 << 6             // compressionBlockCount
	word |= 1 << 22            // encrypted
	word |= 1 << 23            // compressionMethodIndex
	word |= 1 << 29            // size32Safe
	word |= 1 << 30            // uncompressedSize32Safe
	word |= 1 << 31            // offset32Safe

	got := Unpack(word, table)
	require.Equal(t, uint32(10), got["compressionBlockSize"])
	require.Equal(t, uint32(3), got["compressionBlockCount"])
	require.Equal(t, uint32(1), got["encrypted"])
	require.Equal(t, uint32(1), got["compressionMethodIndex"])
	require.Equal(t, uint32(1), got["size32Safe"])
	require.Equal(t, uint32(1), got["uncompressedSize32Safe"])
	require.Equal(t, uint32(1), got["offset32Safe"])
}

func TestValidateDetectsOverlap(t *testing.T) {
	table := []Field{
		{Name: "a", Offset: 0, Length: 4},
		{Name: "b", Offset: 3, Length: 4},
	}
	require.Error(t, Validate(table))
}

func TestValidateRejectsOverflow(t *testing.T) {
	table := []Field{{Name: "a", Offset: 30, Length: 4}}
	require.Error(t, Validate(table))
}

func TestValidateAcceptsNonOverlapping(t *testing.T) {
	table := []Field{
		{Name: "a", Offset: 0, Length: 6},
		{Name: "b", Offset: 6, Length: 16},
		{Name: "c", Offset: 22, Length: 10},
	}
	require.NoError(t, Validate(table))
}
