package codec

import "fmt"

// oodleDecompressor stands in for Epic's proprietary Oodle codec, which
// has no open-source implementation anywhere in the ecosystem. Any
// populated, non-zlib, non-lz4 method name resolves here and fails
// deterministically rather than fabricating a codec.
type oodleDecompressor struct {
	name string
}

func (o oodleDecompressor) Decompress(src []byte, maxOutputLen int) ([]byte, error) {
	return nil, fmt.Errorf("codec: %s: no decompressor available", o.name)
}

func (o oodleDecompressor) String() string { return o.name }
