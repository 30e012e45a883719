// Package bytesource is a seekable random-access reader over the
// archive file, with no buffering assumptions beyond "random access is
// cheap".
package bytesource

import (
	"fmt"
	"io"
	"os"

	"github.com/insomnious/vortexpak/internal/pakerr"
)

// Source is a seekable random-access byte source over a single archive
// file. It owns the underlying OS file handle.
type Source struct {
	path string
	file *os.File
	size int64
}

// Open opens path and stats it for Length().
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pakerr.New(pakerr.KindIO, path, "archive", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pakerr.New(pakerr.KindIO, path, "archive", err)
	}
	return &Source{path: path, file: f, size: info.Size()}, nil
}

// Close releases the underlying OS file handle.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Path returns the archive's path, for error reporting.
func (s *Source) Path() string { return s.path }

// Length returns the total archive size in bytes.
func (s *Source) Length() int64 { return s.size }

// Seek moves the cursor to an absolute offset.
func (s *Source) Seek(offset int64) error {
	if offset < 0 || offset > s.size {
		return pakerr.At(pakerr.KindOffsetOutOfRange, s.path, "archive", offset,
			fmt.Errorf("offset %d outside [0, %d)", offset, s.size))
	}
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return pakerr.At(pakerr.KindIO, s.path, "archive", offset, err)
	}
	return nil
}

// Position returns the current absolute cursor offset.
func (s *Source) Position() (int64, error) {
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, pakerr.New(pakerr.KindIO, s.path, "archive", err)
	}
	return pos, nil
}

// Read implements io.Reader over the current cursor, so a Source can be
// handed directly to internal/primitive.Decoder.
func (s *Source) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

// ReadN reads exactly n bytes at the current cursor, advancing it. Fails
// with KindIO on a short read.
func (s *Source) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, pakerr.New(pakerr.KindMalformedLength, s.path, "archive", fmt.Errorf("negative read length %d", n))
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(s.file, buf); err != nil {
		pos, _ := s.Position()
		return nil, pakerr.At(pakerr.KindIO, s.path, "archive", pos-int64(n), err)
	}
	return buf, nil
}

// PeekAt reads n bytes starting at offset without disturbing the position
// a caller will resume from; it restores the cursor to its pre-call value.
// Used by the Trailer Locator's bounded backward scan.
func (s *Source) PeekAt(offset int64, n int) ([]byte, error) {
	saved, err := s.Position()
	if err != nil {
		return nil, err
	}
	if err := s.Seek(offset); err != nil {
		return nil, err
	}
	data, err := s.ReadN(n)
	if seekErr := s.Seek(saved); seekErr != nil && err == nil {
		err = seekErr
	}
	return data, err
}

// ReadAt implements io.ReaderAt without moving the shared cursor, for
// callers that want to read a known span without a Seek+ReadN round trip.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.file.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, pakerr.At(pakerr.KindIO, s.path, "archive", off, err)
	}
	if n < len(p) {
		return n, pakerr.At(pakerr.KindIO, s.path, "archive", off, io.ErrUnexpectedEOF)
	}
	return n, nil
}

// Clone opens an independent Source over the same path, for parallel
// extraction workers that each need their own cursor.
func (s *Source) Clone() (*Source, error) {
	return Open(s.path)
}
