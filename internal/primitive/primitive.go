// Package primitive decodes little-endian integers, fixed-width GUID and
// hash fields, and length-prefixed NUL-terminated ASCII strings from any
// io.Reader — an archive Byte Source, or an in-memory buffer for a blob
// decoded independently of the archive's own cursor.
package primitive

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/insomnious/vortexpak/internal/pakerr"
)

// GUID is a raw 16-byte little-endian GUID, rendered as uppercase hex with
// no separators (same convention as Hash).
type GUID [16]byte

func (g GUID) String() string {
	return strings.ToUpper(hex.EncodeToString(g[:]))
}

// Hash is a raw 20-byte SHA-1 digest, rendered as uppercase hex without
// separators.
type Hash [20]byte

func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// Decoder reads little-endian primitives from an underlying io.Reader,
// tagging every failure with the archive path and entity name for
// pakerr.Error construction.
type Decoder struct {
	r               io.Reader
	path            string
	entity          string
	maxStringLength int
}

// New wraps r as a primitive Decoder. path and entity are used only for
// error context.
func New(r io.Reader, path, entity string, maxStringLength int) *Decoder {
	if maxStringLength <= 0 {
		maxStringLength = 4096
	}
	return &Decoder{r: r, path: path, entity: entity, maxStringLength: maxStringLength}
}

func (d *Decoder) fail(err error) error {
	return pakerr.New(pakerr.KindIO, d.path, d.entity, err)
}

func (d *Decoder) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, d.fail(err)
	}
	return buf, nil
}

// U8 reads a single byte.
func (d *Decoder) U8() (uint8, error) {
	b, err := d.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (d *Decoder) U16() (uint16, error) {
	b, err := d.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (d *Decoder) U32() (uint32, error) {
	b, err := d.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (d *Decoder) U64() (uint64, error) {
	b, err := d.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I32 reads a little-endian int32.
func (d *Decoder) I32() (int32, error) {
	v, err := d.U32()
	return int32(v), err
}

// I64 reads a little-endian int64.
func (d *Decoder) I64() (int64, error) {
	v, err := d.U64()
	return int64(v), err
}

// GUID reads a fixed 16-byte GUID.
func (d *Decoder) GUID() (GUID, error) {
	var g GUID
	b, err := d.readN(16)
	if err != nil {
		return g, err
	}
	copy(g[:], b)
	return g, nil
}

// Hash reads a fixed 20-byte hash.
func (d *Decoder) Hash() (Hash, error) {
	var h Hash
	b, err := d.readN(20)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	return d.readN(n)
}

// StringI32 reads a 4-byte signed length prefix followed by that many
// bytes of NUL-terminated ASCII. A declared length of <= 0 or greater
// than the configured cap fails with MalformedString.
func (d *Decoder) StringI32() (string, error) {
	n, err := d.I32()
	if err != nil {
		return "", err
	}
	return d.fixedString(int(n))
}

// StringU32 is StringI32 with an unsigned 4-byte length prefix, used by
// the legacy index's filename fields.
func (d *Decoder) StringU32() (string, error) {
	n, err := d.U32()
	if err != nil {
		return "", err
	}
	return d.fixedString(int(n))
}

func (d *Decoder) fixedString(n int) (string, error) {
	if n <= 0 || n > d.maxStringLength {
		return "", pakerr.New(pakerr.KindMalformedString, d.path, d.entity,
			fmt.Errorf("declared string length %d outside (0, %d]", n, d.maxStringLength))
	}
	raw, err := d.readN(n)
	if err != nil {
		return "", err
	}
	if raw[n-1] != 0 {
		return "", pakerr.New(pakerr.KindMalformedString, d.path, d.entity,
			fmt.Errorf("string of declared length %d is not NUL-terminated", n))
	}
	return string(raw[:n-1]), nil
}

// FixedSlotString parses a NUL-terminated ASCII string bounded to a fixed
// slot width, as used by the trailer's compression-method table. An
// all-NUL slot (first byte 0) yields "" without error.
func FixedSlotString(slot []byte) string {
	if len(slot) == 0 || slot[0] == 0 {
		return ""
	}
	if idx := indexByte(slot, 0); idx >= 0 {
		return string(slot[:idx])
	}
	return string(slot)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
