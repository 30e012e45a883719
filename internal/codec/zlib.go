package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibDecompressor inflates a zlib-wrapped deflate stream, the standard
// PAK "zlib" method. Grounded on arloliu-mebo and dethi-riverbed, both of
// which reach for klauspost/compress rather than the stdlib compress/zlib
// package for its faster inflate path.
type zlibDecompressor struct{}

func (zlibDecompressor) Decompress(src []byte, maxOutputLen int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("codec: zlib: %w", err)
	}
	defer r.Close()

	limited := io.LimitReader(r, int64(maxOutputLen)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("codec: zlib: %w", err)
	}
	if len(out) > maxOutputLen {
		return nil, fmt.Errorf("codec: zlib: decompressed output exceeds max %d bytes", maxOutputLen)
	}
	return out, nil
}

func (zlibDecompressor) String() string { return "zlib" }
