// Package index dispatches to the legacy flat-list layout (version < 10)
// or the modern header-plus-blob layout (version >= 10), each behind a
// single version check rather than a type hierarchy.
package index

import (
	"fmt"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/primitive"
	"github.com/insomnious/vortexpak/internal/record"
	"github.com/insomnious/vortexpak/internal/vlog"
)

// Decode reads the index at trailer.IndexOffset, dispatching on version.
func Decode(src *bytesource.Source, trailer *model.Trailer, settings config.Settings) (*model.Index, error) {
	if err := src.Seek(trailer.IndexOffset); err != nil {
		return nil, err
	}
	if trailer.Version < 10 {
		return decodeLegacy(src, trailer, settings)
	}
	return decodeModern(src, trailer, settings)
}

func decodeLegacy(src *bytesource.Source, trailer *model.Trailer, settings config.Settings) (*model.Index, error) {
	dec := primitive.New(src, src.Path(), "index", settings.MaxStringLength)

	mountPoint, err := dec.StringI32()
	if err != nil {
		return nil, err
	}

	count, err := dec.U32()
	if err != nil {
		return nil, err
	}

	idx := &model.Index{MountPoint: mountPoint, Records: make([]model.IndexRecord, 0, count)}

	for i := uint32(0); i < count; i++ {
		filename, err := dec.StringU32()
		if err != nil {
			return nil, err
		}

		rec, _, err := record.Decode(src, trailer.Version, settings)
		if err != nil {
			return nil, err
		}

		// The embedded Record's own offset is where the file's payload
		// actually lives; resolve a fresh DataRecord there and then
		// return to the main index walk.
		resumeAt, err := src.Position()
		if err != nil {
			return nil, err
		}
		resolved, err := record.DecodeAt(src, rec.Offset, trailer.Version, settings)
		if err != nil {
			return nil, err
		}
		if err := src.Seek(resumeAt); err != nil {
			return nil, err
		}

		idx.Records = append(idx.Records, model.IndexRecord{
			Filename:   filename,
			Record:     rec,
			DataRecord: resolved,
		})
	}

	vlog.Logger().Info("legacy index decoded", "entries", len(idx.Records))
	return idx, nil
}

func decodeModern(src *bytesource.Source, trailer *model.Trailer, settings config.Settings) (*model.Index, error) {
	dec := primitive.New(src, src.Path(), "index", settings.MaxStringLength)

	mountPoint, err := dec.StringI32()
	if err != nil {
		return nil, err
	}

	entryCount, err := dec.I32()
	if err != nil {
		return nil, err
	}

	seed, err := dec.U64()
	if err != nil {
		return nil, err
	}

	idx := &model.Index{
		Modern:       true,
		MountPoint:   mountPoint,
		EntryCount:   entryCount,
		PathHashSeed: seed,
	}

	hasPathHash, err := dec.U32()
	if err != nil {
		return nil, err
	}
	if hasPathHash != 0 {
		loc, err := decodeLocator(dec)
		if err != nil {
			return nil, err
		}
		loc.Present = true
		idx.PathHashIndex = loc
	}

	hasFullDir, err := dec.U32()
	if err != nil {
		return nil, err
	}
	if hasFullDir != 0 {
		loc, err := decodeLocator(dec)
		if err != nil {
			return nil, err
		}
		loc.Present = true
		idx.FullDirectoryIndex = loc
	}

	blobLen, err := dec.I32()
	if err != nil {
		return nil, err
	}
	if blobLen < 0 {
		return nil, pakerr.New(pakerr.KindMalformedLength, src.Path(), "index",
			fmt.Errorf("negative encoded-entry-info length %d", blobLen))
	}
	blob, err := dec.Bytes(int(blobLen))
	if err != nil {
		return nil, err
	}
	idx.EncodedEntryInfo = blob

	trailingCount, err := dec.U32()
	if err != nil {
		return nil, err
	}
	idx.TrailingRecordCount = trailingCount

	vlog.Logger().Info("modern index decoded", "entryCount", idx.EntryCount, "hasFullDirectoryIndex", idx.FullDirectoryIndex.Present)
	return idx, nil
}

func decodeLocator(dec *primitive.Decoder) (model.LocatorInfo, error) {
	offset, err := dec.I64()
	if err != nil {
		return model.LocatorInfo{}, err
	}
	size, err := dec.I64()
	if err != nil {
		return model.LocatorInfo{}, err
	}
	hash, err := dec.Hash()
	if err != nil {
		return model.LocatorInfo{}, err
	}
	return model.LocatorInfo{Offset: offset, Size: size, Hash: hash}, nil
}
