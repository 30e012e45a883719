// Package trailer locates and decodes the archive trailer: a bounded
// backward magic scan followed by a version-conditional field layout
// read, where the trailer's own size depends on the version the scan
// discovers.
package trailer

import (
	"fmt"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/primitive"
	"github.com/insomnious/vortexpak/internal/vlog"
)

// Magic is the little-endian u32 trailer signature.
const Magic uint32 = 0x5A6F12E1

// maxTrailerSize is the largest possible trailer: 16 (GUID) + 1 (encrypted
// flag) + 4 (magic) + 4 (version) + 8 (index offset) + 8 (index size) + 20
// (hash) + 1 (frozen flag) + 160 (method table) = 222, rounded up to a
// 226-byte bound.
const maxTrailerSize = 226

// Located is the result of the Trailer Locator.
type Located struct {
	MagicOffset int64
	Version     int32
}

// Locate performs the bounded backward magic scan. Archives shorter than
// 226 bytes fail with TooSmall; otherwise it starts at archiveLength-226
// and scans forward a byte at a time until the magic word is matched or
// the cursor reaches archiveLength-4.
func Locate(src *bytesource.Source) (Located, error) {
	length := src.Length()
	if length < maxTrailerSize {
		return Located{}, pakerr.New(pakerr.KindTooSmall, src.Path(), "trailer",
			fmt.Errorf("archive length %d below minimum trailer size %d", length, maxTrailerSize))
	}

	start := length - maxTrailerSize
	if start < 0 {
		start = 0
	}
	limit := length - 4

	for pos := start; pos <= limit; pos++ {
		word, err := src.PeekAt(pos, 4)
		if err != nil {
			return Located{}, err
		}
		if le32(word) == Magic {
			versionByte, err := src.PeekAt(pos+4, 1)
			if err != nil {
				return Located{}, err
			}
			version := int32(versionByte[0])
			if version == 0 || version > 11 {
				return Located{}, pakerr.At(pakerr.KindUnsupportedVersion, src.Path(), "trailer", pos,
					fmt.Errorf("version %d is not in [1, 11]", version))
			}
			vlog.Logger().Debug("trailer magic located", "offset", pos, "version", version)
			return Located{MagicOffset: pos, Version: version}, nil
		}
	}
	return Located{}, pakerr.New(pakerr.KindMagicNotFound, src.Path(), "trailer",
		fmt.Errorf("magic %#x not found in last %d bytes", Magic, maxTrailerSize))
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Size computes the trailer's byte length from its version.
func Size(version int32) int64 {
	var size int64 = 4 + 4 + 8 + 8 + 20 // magic, version, indexOffset, indexSize, indexHash
	if version >= 7 {
		size += 16
	}
	if version >= 4 {
		size++
	}
	if version == 9 {
		size++
	}
	if version >= 8 {
		size += 5 * 32
	}
	return size
}

// Decode reads the full trailer given its located version.
func Decode(src *bytesource.Source, loc Located, settings config.Settings) (*model.Trailer, error) {
	size := Size(loc.Version)
	start := src.Length() - size
	if start < 0 {
		return nil, pakerr.New(pakerr.KindTooSmall, src.Path(), "trailer",
			fmt.Errorf("computed trailer size %d exceeds archive length %d", size, src.Length()))
	}
	if err := src.Seek(start); err != nil {
		return nil, err
	}

	dec := primitive.New(src, src.Path(), "trailer", settings.MaxStringLength)
	t := &model.Trailer{MagicOffset: loc.MagicOffset, TrailerSize: size}

	if loc.Version >= 7 {
		guid, err := dec.GUID()
		if err != nil {
			return nil, err
		}
		t.EncryptionGUID = guid
		t.HasEncryptionGUID = true
	}
	if loc.Version >= 4 {
		b, err := dec.U8()
		if err != nil {
			return nil, err
		}
		t.EncryptedIndex = b != 0
	}

	magic, err := dec.U32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, pakerr.At(pakerr.KindMagicNotFound, src.Path(), "trailer", start,
			fmt.Errorf("expected magic %#x at computed trailer start, found %#x", Magic, magic))
	}

	version, err := dec.I32()
	if err != nil {
		return nil, err
	}
	t.Version = version

	if t.IndexOffset, err = dec.I64(); err != nil {
		return nil, err
	}
	if t.IndexSize, err = dec.I64(); err != nil {
		return nil, err
	}
	if t.IndexHash, err = dec.Hash(); err != nil {
		return nil, err
	}

	if loc.Version == 9 {
		b, err := dec.U8()
		if err != nil {
			return nil, err
		}
		t.FrozenIndex = b != 0
		t.HasFrozenIndex = true
	}

	if loc.Version >= 8 {
		methods := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			slot, err := dec.Bytes(32)
			if err != nil {
				return nil, err
			}
			methods = append(methods, primitive.FixedSlotString(slot))
		}
		if settings.StrictMethodTableSlots && loc.Version == 8 && methods[4] != "" {
			return nil, pakerr.At(pakerr.KindMalformedLength, src.Path(), "trailer", start,
				fmt.Errorf("version 8 trailer's 5th method slot is populated, which StrictMethodTableSlots rejects"))
		}
		t.CompressionMethods = methods
	}

	if t.IndexOffset < 0 || t.IndexOffset >= src.Length() {
		return nil, pakerr.At(pakerr.KindOffsetOutOfRange, src.Path(), "trailer", t.IndexOffset,
			fmt.Errorf("index offset %d outside [0, %d)", t.IndexOffset, src.Length()))
	}

	vlog.Logger().Info("trailer decoded", "version", t.Version, "indexOffset", t.IndexOffset, "indexSize", t.IndexSize)
	return t, nil
}
