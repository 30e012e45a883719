// Package model holds the data types shared across the decode pipeline
// (trailer, record, index, encoded entry), kept in one leaf package to
// avoid import cycles between internal/trailer, internal/record,
// internal/index, and internal/encodedentry.
package model

import "github.com/insomnious/vortexpak/internal/primitive"

// Trailer is the archive's version-dependent footer.
type Trailer struct {
	EncryptionGUID     primitive.GUID // zero value when version < 7
	HasEncryptionGUID  bool
	EncryptedIndex     bool
	Version            int32
	IndexOffset        int64
	IndexSize          int64
	IndexHash          primitive.Hash
	FrozenIndex        bool
	HasFrozenIndex     bool
	CompressionMethods []string // index 0 is implicit "none", not stored here

	// MagicOffset is where the Trailer Locator found the magic; TrailerSize
	// is the computed byte length of the whole trailer region.
	MagicOffset int64
	TrailerSize int64
}

// MethodName resolves a 1-based compression method index against the
// trailer's method table. Index 0 always means "none". Returns "" if the
// index is out of range (caller should treat that as CodecFailure).
func (t *Trailer) MethodName(index uint32) string {
	if index == 0 {
		return "none"
	}
	i := int(index) - 1
	if i < 0 || i >= len(t.CompressionMethods) {
		return ""
	}
	return t.CompressionMethods[i]
}

// CompressionBlock delimits one compressed chunk of a file's payload.
// Offsets are absolute for version <= 4 and relative to the owning
// Record's start position for version >= 7; the Record Decoder
// normalizes both cases to absolute before returning.
type CompressionBlock struct {
	StartOffset int64
	EndOffset   int64
}

// Record is the full per-file metadata block.
type Record struct {
	Offset                         int64
	CompressedSize                 int64
	UncompressedSize               int64
	CompressionMethodIndex         uint32
	HasTimestamp                   bool
	Timestamp                      uint64
	DataHash                       primitive.Hash
	CompressionBlocks              []CompressionBlock
	Encrypted                      bool
	CompressionBlockUncompressedSize uint32
}

// DataRecord pairs a Record with the archive position where its payload
// begins; the payload itself is never eagerly read.
type DataRecord struct {
	Record     Record
	DataOffset int64
}

// EncodedRecord is the expansion of the packed 32-bit entry descriptor
// plus its conditional follow-on words.
type EncodedRecord struct {
	CompressionBlockSize    uint32 // raw 6-bit field; unit interpretation is left to the extraction engine
	CompressionBlockCount   uint32
	Encrypted               bool
	CompressionMethodIndex  uint32
	Size32Safe              bool
	UncompressedSize32Safe  bool
	Offset32Safe            bool

	Offset            int64
	UncompressedSize  int64
	CompressedSize    int64
}

// IndexRecord is one entry in a legacy (version < 10) flat index.
type IndexRecord struct {
	Filename   string
	Record     Record
	DataRecord DataRecord
}

// LocatorInfo describes a secondary index locator (path-hash or
// full-directory) present only in modern (version >= 10) indices.
type LocatorInfo struct {
	Present bool
	Offset  int64
	Size    int64
	Hash    primitive.Hash
}

// Index is the decoded directory of entries.
type Index struct {
	MountPoint string

	// Legacy (version < 10) fields.
	Records []IndexRecord

	// Modern (version >= 10) fields.
	Modern               bool
	EntryCount           int32
	PathHashSeed         uint64
	PathHashIndex        LocatorInfo
	FullDirectoryIndex   LocatorInfo
	EncodedEntryInfo     []byte
	TrailingRecordCount  uint32
}

// DirectoryFile is one file entry inside a decoded Directory.
type DirectoryFile struct {
	Filename           string
	EncodedEntryOffset uint32
}

// Directory is one named directory in the modern full-directory tree.
type Directory struct {
	Name  string
	Files []DirectoryFile
}

// Entry is the archive-agnostic view of one contained file that
// pkg/pak exposes to callers, unifying legacy IndexRecords and modern
// directory/encoded-entry pairs behind a single shape.
type Entry struct {
	LogicalPath string // mountPoint + directoryName(if any) + filename, not yet normalized for the filesystem
	DataRecord  DataRecord
}
