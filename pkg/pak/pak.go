// Package pak is the public facade over the archive engine: Open a PAK
// file, enumerate its entries, and extract one or all of them, narrowed
// to the operations a CLI or library caller actually needs rather than
// the whole internal surface.
package pak

import (
	"context"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/insomnious/vortexpak/internal/archive"
	"github.com/insomnious/vortexpak/internal/codec"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/extract"
	"github.com/insomnious/vortexpak/internal/model"
)

// Settings re-exports internal/config.Settings so callers never need to
// import an internal package to configure Open.
type Settings = config.Settings

// DefaultSettings returns the engine's default tunables.
func DefaultSettings() Settings { return config.Default() }

// Entry is one file contained in the archive, exposed with its logical
// (not yet filesystem-normalized) path and decoded size metadata.
type Entry struct {
	Path              string
	CompressedSize    int64
	UncompressedSize  int64
	Encrypted         bool
	CompressionMethod string
}

// Archive is an opened PAK file. The zero value is not usable; construct
// with Open.
type Archive struct {
	session *archive.Session
	entries []model.Entry
	byPath  map[uint64][]int
}

// Open locates and decodes path's trailer and index. Settings{} (the
// zero value) uses DefaultSettings.
func Open(path string, settings Settings) (*Archive, error) {
	sess, err := archive.Open(path, settings)
	if err != nil {
		return nil, err
	}
	entries, err := sess.Entries()
	if err != nil {
		sess.Close()
		return nil, err
	}
	byPath := make(map[uint64][]int, len(entries))
	for i, e := range entries {
		h := xxhash.Sum64String(e.LogicalPath)
		byPath[h] = append(byPath[h], i)
	}
	return &Archive{session: sess, entries: entries, byPath: byPath}, nil
}

// Close releases the archive's file handle.
func (a *Archive) Close() error { return a.session.Close() }

// Version reports the archive's trailer version.
func (a *Archive) Version() int32 { return a.session.Trailer.Version }

// MountPoint is the index's mount-point string.
func (a *Archive) MountPoint() string { return a.session.Index.MountPoint }

// Entries lists every contained file.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, Entry{
			Path:              e.LogicalPath,
			CompressedSize:    e.DataRecord.Record.CompressedSize,
			UncompressedSize:  e.DataRecord.Record.UncompressedSize,
			Encrypted:         e.DataRecord.Record.Encrypted,
			CompressionMethod: a.session.Trailer.MethodName(e.DataRecord.Record.CompressionMethodIndex),
		})
	}
	return out
}

// Extract writes the single entry at logicalPath to w. Lookup is by an
// xxhash digest of the path rather than a linear scan, since an archive
// can hold tens of thousands of entries and Extract may be called once
// per path from a caller doing selective extraction.
func (a *Archive) Extract(ctx context.Context, logicalPath string, w io.Writer) error {
	for _, i := range a.byPath[xxhash.Sum64String(logicalPath)] {
		if a.entries[i].LogicalPath == logicalPath {
			return extract.File(ctx, a.session.Source, a.session.Trailer, a.session.Registry, a.entries[i].DataRecord, w, a.session.Settings)
		}
	}
	return fmt.Errorf("pak: no such entry %q", logicalPath)
}

// Open returns a stream over the single entry at logicalPath, decompressing
// on read rather than buffering the whole file. The stream owns an
// independent Byte Source clone so it can be read concurrently with other
// Archive operations; closing it releases that clone. Decoding runs on a
// background goroutine feeding an io.Pipe, so a caller that never finishes
// reading must still Close to release the goroutine.
func (a *Archive) Open(logicalPath string) (io.ReadCloser, error) {
	var dr model.DataRecord
	found := false
	for _, i := range a.byPath[xxhash.Sum64String(logicalPath)] {
		if a.entries[i].LogicalPath == logicalPath {
			dr = a.entries[i].DataRecord
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("pak: no such entry %q", logicalPath)
	}

	clone, err := a.session.Source.Clone()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		defer clone.Close()
		err := extract.File(context.Background(), clone, a.session.Trailer, a.session.Registry, dr, pw, a.session.Settings)
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// ExtractResult reports one file's outcome from ExtractAll.
type ExtractResult struct {
	Path string
	Err  error
}

// ExtractAll extracts every entry under outputRoot, normalizing each
// logical path for the host filesystem. Extraction of distinct files is
// parallelized across Settings.ExtractWorkers workers, each owning an
// independent Byte Source clone. Per-file failures are isolated and
// reported in the returned slice rather than aborting the batch.
func (a *Archive) ExtractAll(ctx context.Context, outputRoot string) []ExtractResult {
	jobs := make([]extract.Job, 0, len(a.entries))
	for _, e := range a.entries {
		rel := extract.NormalizePath(e.LogicalPath, "", "")
		f, err := extract.CreateSink(outputRoot, rel)
		if err != nil {
			jobs = append(jobs, extract.Job{Path: e.LogicalPath, Writer: failWriter{err}, DataRecord: e.DataRecord})
			continue
		}
		jobs = append(jobs, extract.Job{Path: e.LogicalPath, Writer: f, DataRecord: e.DataRecord})
	}

	results := extract.RunParallel(ctx, a.session.Source, a.session.Trailer, a.session.Registry, jobs, a.session.Settings)
	out := make([]ExtractResult, 0, len(results))
	for _, r := range results {
		out = append(out, ExtractResult{Path: r.Path, Err: r.Err})
	}
	return out
}

// failWriter reports err on every Write/Close call, letting ExtractAll
// carry a sink-creation failure through the same result channel as a
// decode/codec failure instead of a special-cased early return.
type failWriter struct{ err error }

func (f failWriter) Write(p []byte) (int, error) { return 0, f.err }
func (f failWriter) Close() error                { return f.err }

var _ io.WriteCloser = failWriter{}
