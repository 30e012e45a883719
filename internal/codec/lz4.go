package codec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Decompressor decompresses a raw LZ4 block, for method tables that
// name an LZ4 variant.
type lz4Decompressor struct{}

func (lz4Decompressor) Decompress(src []byte, maxOutputLen int) ([]byte, error) {
	out := make([]byte, maxOutputLen)
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, fmt.Errorf("codec: lz4: %w", err)
	}
	return out[:n], nil
}

func (lz4Decompressor) String() string { return "lz4" }
