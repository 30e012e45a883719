// Package encodedentry decodes the packed 32-bit entry descriptor plus
// its conditional follow-on words out of the "encoded entry info" blob.
// The blob is modeled as its own in-memory byte source, so the archive
// cursor used by the record and directory decoders is never disturbed.
package encodedentry

import (
	"bytes"

	"github.com/insomnious/vortexpak/internal/bitfield"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/primitive"
)

// fields is the packed word's declarative bit layout, LSB-first.
var fields = []bitfield.Field{
	{Name: "compressionBlockSize", Offset: 0, Length: 6},
	{Name: "compressionBlockCount", Offset: 6, Length: 16},
	{Name: "encrypted", Offset: 22, Length: 1},
	{Name: "compressionMethodIndex", Offset: 23, Length: 6},
	{Name: "size32Safe", Offset: 29, Length: 1},
	{Name: "uncompressedSize32Safe", Offset: 30, Length: 1},
	{Name: "offset32Safe", Offset: 31, Length: 1},
}

// Blob wraps the encoded-entry-info byte slice as a random-access source,
// since each entry's offset into it is given directly rather than
// discovered by sequential scan.
type Blob struct {
	path string
	data []byte
}

// NewBlob wraps data. path is used only for error context.
func NewBlob(path string, data []byte) *Blob {
	return &Blob{path: path, data: data}
}

// Expand decodes the EncodedRecord starting at byte offset pos within the
// blob.
func Expand(b *Blob, pos uint32, settings config.Settings) (model.EncodedRecord, error) {
	if int64(pos) < 0 || int64(pos) > int64(len(b.data)) {
		return model.EncodedRecord{}, pakerr.At(pakerr.KindOffsetOutOfRange, b.path, "encoded entry", int64(pos),
			bytes.ErrTooLarge)
	}
	r := bytes.NewReader(b.data)
	if _, err := r.Seek(int64(pos), 0); err != nil {
		return model.EncodedRecord{}, pakerr.At(pakerr.KindOffsetOutOfRange, b.path, "encoded entry", int64(pos), err)
	}

	dec := primitive.New(r, b.path, "encoded entry", settings.MaxStringLength)
	word, err := dec.U32()
	if err != nil {
		return model.EncodedRecord{}, err
	}

	f := bitfield.Unpack(word, fields)
	rec := model.EncodedRecord{
		CompressionBlockSize:   f["compressionBlockSize"],
		CompressionBlockCount:  f["compressionBlockCount"],
		Encrypted:              f["encrypted"] != 0,
		CompressionMethodIndex: f["compressionMethodIndex"],
		Size32Safe:             f["size32Safe"] != 0,
		UncompressedSize32Safe: f["uncompressedSize32Safe"] != 0,
		Offset32Safe:           f["offset32Safe"] != 0,
	}

	if rec.Offset32Safe {
		v, err := dec.U32()
		if err != nil {
			return model.EncodedRecord{}, err
		}
		rec.Offset = int64(v)
	} else {
		v, err := dec.U64()
		if err != nil {
			return model.EncodedRecord{}, err
		}
		rec.Offset = int64(v)
	}

	if rec.UncompressedSize32Safe {
		v, err := dec.U32()
		if err != nil {
			return model.EncodedRecord{}, err
		}
		rec.UncompressedSize = int64(v)
	} else {
		v, err := dec.U64()
		if err != nil {
			return model.EncodedRecord{}, err
		}
		rec.UncompressedSize = int64(v)
	}

	if rec.CompressionMethodIndex != 0 {
		if rec.Size32Safe {
			v, err := dec.U32()
			if err != nil {
				return model.EncodedRecord{}, err
			}
			rec.CompressedSize = int64(v)
		} else {
			v, err := dec.U64()
			if err != nil {
				return model.EncodedRecord{}, err
			}
			rec.CompressedSize = int64(v)
		}
	} else {
		rec.CompressedSize = rec.UncompressedSize
	}

	return rec, nil
}
