package record

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
)

// TestPropertyBlocksAreMonotonicAndDataOffsetBound checks, over arbitrary
// generated v7 records with compressed blocks, that block[i].endOffset <=
// block[i+1].startOffset, and block[0].startOffset >= record.dataOffset.
func TestPropertyBlocksAreMonotonicAndDataOffsetBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		blockCount := rapid.IntRange(1, 8).Draw(rt, "blockCount")
		blockLens := make([]int64, blockCount)
		for i := range blockLens {
			blockLens[i] = rapid.Int64Range(1, 4096).Draw(rt, "blockLen")
		}

		// Record header layout, fixed fields before the block table:
		// offset(8) + compressedSize(8) + uncompressedSize(8) + method(4) +
		// hash(20) + blockCount(4) = 52 bytes, then blockCount*16 bytes of
		// block pairs, then encrypted(1) + blockUncompressedSize(4) = 5
		// bytes. On a real v>=7 archive the stored raw block offsets are
		// relative to the Record's own start and point past this entire
		// header to where the compressed payload actually begins, so the
		// first raw offset equals the header's total size.
		headerSize := int64(52 + blockCount*16 + 5)

		buf := &bytes.Buffer{}
		mustWrite(rt, buf, int64(0))  // offset
		mustWrite(rt, buf, int64(1))  // compressedSize (placeholder, not checked here)
		mustWrite(rt, buf, int64(1))  // uncompressedSize
		mustWrite(rt, buf, uint32(1)) // compression method: non-zero so blocks are read
		buf.Write(make([]byte, 20))   // hash
		mustWrite(rt, buf, uint32(blockCount))

		cursor := headerSize
		for _, l := range blockLens {
			mustWrite(rt, buf, cursor)   // startOffset, relative (v>=7)
			mustWrite(rt, buf, cursor+l) // endOffset, relative
			cursor += l
		}
		buf.WriteByte(0) // encrypted
		mustWrite(rt, buf, uint32(65536))

		path := filepath.Join(rt.TempDir(), "record.bin")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			rt.Fatal(err)
		}
		src, err := bytesource.Open(path)
		if err != nil {
			rt.Fatal(err)
		}
		defer src.Close()

		rec, dataOffset, err := Decode(src, 7, config.Default())
		if err != nil {
			rt.Fatal(err)
		}

		if len(rec.CompressionBlocks) == 0 {
			rt.Fatal("expected at least one compression block")
		}
		if rec.CompressionBlocks[0].StartOffset < dataOffset {
			rt.Fatalf("block[0].startOffset %d < dataOffset %d", rec.CompressionBlocks[0].StartOffset, dataOffset)
		}
		for i := 0; i+1 < len(rec.CompressionBlocks); i++ {
			if rec.CompressionBlocks[i].EndOffset > rec.CompressionBlocks[i+1].StartOffset {
				rt.Fatalf("block %d endOffset %d exceeds block %d startOffset %d",
					i, rec.CompressionBlocks[i].EndOffset, i+1, rec.CompressionBlocks[i+1].StartOffset)
			}
		}
	})
}

func mustWrite(rt *rapid.T, buf *bytes.Buffer, v any) {
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		rt.Fatal(err)
	}
}
