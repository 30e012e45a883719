// Package codec defines the Decompressor capability: a small interface
// the extraction engine calls through, plus a registry resolving a
// trailer method-table name to an implementation. The extraction engine
// never imports a specific codec package, only this one.
package codec

import "fmt"

// Decompressor decompresses one compression block. Implementations must
// not produce more than maxOutputLen bytes.
type Decompressor interface {
	Decompress(src []byte, maxOutputLen int) ([]byte, error)
	String() string
}

// Registry resolves a compression method name to a Decompressor.
type Registry struct {
	byName map[string]Decompressor
}

// NewRegistry builds the default registry: "none" is the identity
// passthrough (never invoked by the extraction engine directly, since
// method index 0 bypasses this path entirely, but kept here so callers
// can look it up without a special case), "zlib" and "lz4" map to real
// decompressors, and any other non-empty name maps to the proprietary LZ
// stub.
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]Decompressor{
			"none": noneDecompressor{},
			"zlib": zlibDecompressor{},
			"lz4":  lz4Decompressor{},
		},
	}
}

// Resolve looks up name, falling back to the proprietary LZ stub for any
// non-empty, non-"zlib", non-"lz4" method name (covers "oodle" and any
// vendor-specific name an archive's method table might carry).
func (r *Registry) Resolve(name string) (Decompressor, error) {
	if name == "" {
		return nil, fmt.Errorf("codec: empty compression method name")
	}
	if d, ok := r.byName[name]; ok {
		return d, nil
	}
	return oodleDecompressor{name: name}, nil
}

type noneDecompressor struct{}

func (noneDecompressor) Decompress(src []byte, maxOutputLen int) ([]byte, error) {
	if len(src) > maxOutputLen {
		return nil, fmt.Errorf("codec: none: input %d exceeds max output %d", len(src), maxOutputLen)
	}
	return src, nil
}

func (noneDecompressor) String() string { return "none" }
