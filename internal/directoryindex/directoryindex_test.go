package directoryindex

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insomnious/vortexpak/internal/bytesource"
	"github.com/insomnious/vortexpak/internal/config"
	"github.com/insomnious/vortexpak/internal/model"
)

func TestDecodeTwoDirectoriesOneFileEach(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(2))) // directory count

	for _, dir := range []struct {
		name     string
		filename string
		offset   uint32
	}{
		{"dirA/", "a.txt", 0},
		{"dirB/", "b.txt", 16},
	} {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(len(dir.name)+1)))
		buf.WriteString(dir.name + "\x00")
		require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(1))) // file count
		require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(len(dir.filename)+1)))
		buf.WriteString(dir.filename + "\x00")
		require.NoError(t, binary.Write(buf, binary.LittleEndian, dir.offset))
	}

	path := filepath.Join(t.TempDir(), "archive.pak")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	src, err := bytesource.Open(path)
	require.NoError(t, err)
	defer src.Close()

	idx := &model.Index{FullDirectoryIndex: model.LocatorInfo{Present: true, Offset: 0}}
	dirs, err := Decode(src, idx, config.Default())
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	require.Equal(t, "dirA/", dirs[0].Name)
	require.Equal(t, "a.txt", dirs[0].Files[0].Filename)
	require.EqualValues(t, 0, dirs[0].Files[0].EncodedEntryOffset)
	require.Equal(t, "dirB/", dirs[1].Name)
	require.Equal(t, "b.txt", dirs[1].Files[0].Filename)
	require.EqualValues(t, 16, dirs[1].Files[0].EncodedEntryOffset)
}
