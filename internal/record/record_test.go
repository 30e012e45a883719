package record

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.pak")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// buildRecordV3Plus encodes a Record in the field order record.Decode
// expects for version >= 3: offset, compressedSize, uncompressedSize,
// methodIndex, hash, [blockCount, blocks if method != 0], encrypted,
// blockUncompressedSize.
func buildRecordV3Plus(t *testing.T, offset, compressedSize, uncompressedSize int64, method uint32, blocks [][2]int64, encrypted bool, blockUncompressedSize uint32) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, offset))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, compressedSize))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uncompressedSize))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, method))
	buf.Write(make([]byte, 20)) // hash

	if method != 0 {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(len(blocks))))
		for _, b := range blocks {
			require.NoError(t, binary.Write(buf, binary.LittleEndian, b[0]))
			require.NoError(t, binary.Write(buf, binary.LittleEndian, b[1]))
		}
	}
	if encrypted {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, blockUncompressedSize))
	return buf.Bytes()
}

// TestDecodeV3CompressedUsesAbsoluteBlockOffsets covers a compressed
// version-3 record, whose on-disk block offsets are already absolute.
func TestDecodeV3CompressedUsesAbsoluteBlockOffsets(t *testing.T) {
	lead := make([]byte, 1024)
	body := buildRecordV3Plus(t, 1024, 4096, 8192, 1,
		[][2]int64{{1024, 3072}, {3072, 5120}}, false, 65536)
	path := writeFile(t, append(lead, body...))

	src, err := bytesource.Open(path)
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, src.Seek(1024))

	rec, dataOffset, err := Decode(src, 3, config.Default())
	require.NoError(t, err)
	require.EqualValues(t, 1024, rec.Offset)
	require.EqualValues(t, 4096, rec.CompressedSize)
	require.EqualValues(t, 8192, rec.UncompressedSize)
	require.Len(t, rec.CompressionBlocks, 2)
	// Version 3 is < 7, so block offsets are taken as already absolute.
	require.Equal(t, int64(1024), rec.CompressionBlocks[0].StartOffset)
	require.Equal(t, int64(3072), rec.CompressionBlocks[0].EndOffset)
	require.Equal(t, int64(3072), rec.CompressionBlocks[1].StartOffset)
	require.Equal(t, int64(5120), rec.CompressionBlocks[1].EndOffset)
	require.Greater(t, dataOffset, int64(1024))
}

// TestDecodeV7AdjustsRelativeBlockOffsetsByRecordStart covers a version-7
// record, whose on-disk block offsets are relative to the record's own
// start and must be adjusted to absolute.
func TestDecodeV7AdjustsRelativeBlockOffsetsByRecordStart(t *testing.T) {
	lead := make([]byte, 2048)
	// On-disk block pairs are relative to the Record's own start (P=2048):
	// (0..1000) and (1000..2000).
	body := buildRecordV3Plus(t, 2048, 2000, 2000, 1,
		[][2]int64{{0, 1000}, {1000, 2000}}, false, 65536)
	path := writeFile(t, append(lead, body...))

	src, err := bytesource.Open(path)
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, src.Seek(2048))

	rec, _, err := Decode(src, 7, config.Default())
	require.NoError(t, err)
	require.Equal(t, int64(2048), rec.CompressionBlocks[0].StartOffset)
	require.Equal(t, int64(3048), rec.CompressionBlocks[0].EndOffset)
	require.Equal(t, int64(3048), rec.CompressionBlocks[1].StartOffset)
	require.Equal(t, int64(4048), rec.CompressionBlocks[1].EndOffset)
}

func TestUncompressedRecordHasNoBlocks(t *testing.T) {
	body := buildRecordV3Plus(t, 0, 100, 100, 0, nil, false, 0)
	path := writeFile(t, body)

	src, err := bytesource.Open(path)
	require.NoError(t, err)
	defer src.Close()

	rec, _, err := Decode(src, 3, config.Default())
	require.NoError(t, err)
	require.Empty(t, rec.CompressionBlocks)
}

func TestV1HasTimestampNoBlockGate(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int64(0)))   // offset
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int64(10)))  // compressedSize
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int64(10))) // uncompressedSize
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(0))) // method
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint64(123))) // timestamp, v<=1 only
	buf.Write(make([]byte, 20))                                            // hash
	path := writeFile(t, buf.Bytes())

	src, err := bytesource.Open(path)
	require.NoError(t, err)
	defer src.Close()

	rec, dataOffset, err := Decode(src, 1, config.Default())
	require.NoError(t, err)
	require.True(t, rec.HasTimestamp)
	require.EqualValues(t, 123, rec.Timestamp)
	require.EqualValues(t, 8+8+8+4+8+20, dataOffset)
}
