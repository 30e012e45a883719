// Package directoryindex implements the Directory Index Decoder (spec
// §4.I): the modern full-directory tree, present only when the Index's
// FullDirectoryIndex locator is set. Structurally a nested version of the
// same length-prefixed-NUL-terminated-string-then-count-then-items shape
// internal/index uses for the legacy flat list.
package directoryindex

import (
	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
	"github.com/insomnious/vortexpak/internal/primitive"
	"github.com/insomnious/vortexpak/internal/vlog"
)

// Decode reads the directory tree at idx.FullDirectoryIndex.Offset.
// Callers should check idx.FullDirectoryIndex.Present first.
func Decode(src *bytesource.Source, idx *model.Index, settings config.Settings) ([]model.Directory, error) {
	if err := src.Seek(idx.FullDirectoryIndex.Offset); err != nil {
		return nil, err
	}
	dec := primitive.New(src, src.Path(), "directory index", settings.MaxStringLength)

	dirCount, err := dec.U32()
	if err != nil {
		return nil, err
	}

	dirs := make([]model.Directory, 0, dirCount)
	for i := uint32(0); i < dirCount; i++ {
		name, err := dec.StringI32()
		if err != nil {
			return nil, err
		}
		fileCount, err := dec.U32()
		if err != nil {
			return nil, err
		}
		files := make([]model.DirectoryFile, 0, fileCount)
		for j := uint32(0); j < fileCount; j++ {
			filename, err := dec.StringI32()
			if err != nil {
				return nil, err
			}
			offset, err := dec.U32()
			if err != nil {
				return nil, err
			}
			files = append(files, model.DirectoryFile{Filename: filename, EncodedEntryOffset: offset})
		}
		dirs = append(dirs, model.Directory{Name: name, Files: files})
	}

	vlog.Logger().Info("directory index decoded", "directories", len(dirs))
	return dirs, nil
}
