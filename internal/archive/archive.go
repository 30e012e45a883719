// Package archive orchestrates one reader session: locate and decode the
// trailer, decode the index (legacy or modern), expand modern entries
// through the encoded-entry/directory-index path, and expose a flat entry
// list to pkg/pak. One owning struct walks its sub-decoders in order and
// is read-only once done.
package archive

import (
	"fmt"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/codec"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/directoryindex"
	"github.com/insomnious/vortexpak/internal/encodedentry"
	"github.com/insomnious/vortexpak/internal/index"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/pakerr"
	"github.com/insomnious/vortexpak/internal/record"
	"github.com/insomnious/vortexpak/internal/trailer"
	"github.com/insomnious/vortexpak/internal/vlog"
)

// State is the Session lifecycle stage.
type State int

const (
	Unopened State = iota
	TrailerLocated
	IndexDecoded
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "Unopened"
	case TrailerLocated:
		return "TrailerLocated"
	case IndexDecoded:
		return "IndexDecoded"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session owns one archive's decoded model: its Byte Source, Trailer,
// Index, and (for modern archives) Directory tree. Nothing is mutated
// after IndexDecoded.
type Session struct {
	Source     *bytesource.Source
	Settings   config.Settings
	Registry   *codec.Registry
	Trailer    *model.Trailer
	Index      *model.Index
	Directories []model.Directory

	state State
}

// Open locates and decodes the trailer, then the index (and, for modern
// archives, the directory tree), leaving the session in IndexDecoded.
func Open(path string, settings config.Settings) (*Session, error) {
	settings = config.Normalize(settings)

	src, err := bytesource.Open(path)
	if err != nil {
		return nil, err
	}

	s := &Session{Source: src, Settings: settings, Registry: codec.NewRegistry(), state: Unopened}

	loc, err := trailer.Locate(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	s.state = TrailerLocated

	t, err := trailer.Decode(src, loc, settings)
	if err != nil {
		src.Close()
		return nil, err
	}
	s.Trailer = t

	idx, err := index.Decode(src, t, settings)
	if err != nil {
		src.Close()
		return nil, err
	}
	s.Index = idx

	if idx.Modern && idx.FullDirectoryIndex.Present {
		dirs, err := directoryindex.Decode(src, idx, settings)
		if err != nil {
			src.Close()
			return nil, err
		}
		s.Directories = dirs
	}

	s.state = IndexDecoded
	vlog.Logger().Info("session opened", "path", path, "version", t.Version, "modern", idx.Modern)
	return s, nil
}

// Close releases the underlying Byte Source.
func (s *Session) Close() error {
	s.state = Closed
	return s.Source.Close()
}

// State reports the session's current lifecycle stage.
func (s *Session) State() State { return s.state }

// Entries returns every contained file as a flat, archive-agnostic list,
// resolving modern entries through the encoded-entry/directory-index
// path and legacy entries directly from the Index's IndexRecords.
func (s *Session) Entries() ([]model.Entry, error) {
	if s.Index.Modern {
		return s.modernEntries()
	}
	return s.legacyEntries(), nil
}

func (s *Session) legacyEntries() []model.Entry {
	out := make([]model.Entry, 0, len(s.Index.Records))
	for _, rec := range s.Index.Records {
		out = append(out, model.Entry{
			LogicalPath: s.Index.MountPoint + rec.Filename,
			DataRecord:  rec.DataRecord,
		})
	}
	return out
}

func (s *Session) modernEntries() ([]model.Entry, error) {
	if !s.Index.FullDirectoryIndex.Present {
		return nil, fmt.Errorf("archive: modern index has no full directory index to enumerate")
	}
	blob := encodedentry.NewBlob(s.Source.Path(), s.Index.EncodedEntryInfo)

	out := make([]model.Entry, 0, s.Index.EntryCount)
	for _, dir := range s.Directories {
		for _, f := range dir.Files {
			enc, err := encodedentry.Expand(blob, f.EncodedEntryOffset, s.Settings)
			if err != nil {
				return nil, err
			}
			if enc.Offset < 0 || enc.Offset >= s.Source.Length() {
				return nil, pakerr.At(pakerr.KindOffsetOutOfRange, s.Source.Path(), "encoded entry", enc.Offset,
					fmt.Errorf("offset %d outside archive bounds", enc.Offset))
			}
			dr, err := record.DecodeAt(s.Source, enc.Offset, s.Trailer.Version, s.Settings)
			if err != nil {
				return nil, err
			}
			out = append(out, model.Entry{
				LogicalPath: s.Index.MountPoint + dir.Name + f.Filename,
				DataRecord:  dr,
			})
		}
	}
	return out, nil
}
