// Package record decodes version-conditional per-file metadata,
// including the compression block table and its absolute-vs-relative
// offset adjustment across versions.
package record

import (
	"fmt"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/primitive"
)

// Decode reads a full Record starting at the archive's current cursor
// position. version is the trailer's decoded version, which gates the
// timestamp field, the compression block table, and the block offset
// adjustment. Returns the Record and the position immediately after it
// (the payload's dataOffset).
func Decode(src *bytesource.Source, version int32, settings config.Settings) (model.Record, int64, error) {
	startPos, err := src.Position()
	if err != nil {
		return model.Record{}, 0, err
	}

	dec := primitive.New(src, src.Path(), "record", settings.MaxStringLength)
	var rec model.Record

	if rec.Offset, err = dec.I64(); err != nil {
		return model.Record{}, 0, err
	}
	if rec.CompressedSize, err = dec.I64(); err != nil {
		return model.Record{}, 0, err
	}
	if rec.UncompressedSize, err = dec.I64(); err != nil {
		return model.Record{}, 0, err
	}
	if rec.CompressionMethodIndex, err = dec.U32(); err != nil {
		return model.Record{}, 0, err
	}

	if version <= 1 {
		ts, err := dec.U64()
		if err != nil {
			return model.Record{}, 0, err
		}
		rec.HasTimestamp = true
		rec.Timestamp = ts
	}

	if rec.DataHash, err = dec.Hash(); err != nil {
		return model.Record{}, 0, err
	}

	if version >= 3 {
		if rec.CompressionMethodIndex != 0 {
			count, err := dec.U32()
			if err != nil {
				return model.Record{}, 0, err
			}
			blocks := make([]model.CompressionBlock, count)
			for i := range blocks {
				start, err := dec.I64()
				if err != nil {
					return model.Record{}, 0, err
				}
				end, err := dec.I64()
				if err != nil {
					return model.Record{}, 0, err
				}
				if version >= 7 {
					start += startPos
					end += startPos
				}
				blocks[i] = model.CompressionBlock{StartOffset: start, EndOffset: end}
			}
			rec.CompressionBlocks = blocks
		}

		encrypted, err := dec.U8()
		if err != nil {
			return model.Record{}, 0, err
		}
		rec.Encrypted = encrypted != 0

		blockSize, err := dec.U32()
		if err != nil {
			return model.Record{}, 0, err
		}
		rec.CompressionBlockUncompressedSize = blockSize
	}

	if rec.CompressionMethodIndex == 0 && len(rec.CompressionBlocks) != 0 {
		return model.Record{}, 0, pakerr.New(pakerr.KindBlockMismatch, src.Path(), "record",
			fmt.Errorf("uncompressed record declares %d compression blocks", len(rec.CompressionBlocks)))
	}

	dataOffset, err := src.Position()
	if err != nil {
		return model.Record{}, 0, err
	}
	return rec, dataOffset, nil
}

// DecodeAt seeks to pos before decoding, restoring no prior cursor (the
// caller is expected to already be done with the old position — the
// Index Decoder uses this to resolve a legacy IndexRecord's DataRecord:
// seek to record.offset, decode, capture dataOffset, and reseek to
// resume the main walk).
func DecodeAt(src *bytesource.Source, pos int64, version int32, settings config.Settings) (model.DataRecord, error) {
	if err := src.Seek(pos); err != nil {
		return model.DataRecord{}, err
	}
	rec, dataOffset, err := Decode(src, version, settings)
	if err != nil {
		return model.DataRecord{}, err
	}
	return model.DataRecord{Record: rec, DataOffset: dataOffset}, nil
}
