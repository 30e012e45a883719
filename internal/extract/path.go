package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath joins mountPoint, an optional directory name, and a
// filename into a single logical path, then normalizes it for the host
// filesystem: forward slashes become the host separator and empty, ".",
// and ".." segments are dropped.
func NormalizePath(mountPoint, directory, filename string) string {
	joined := mountPoint + directory + filename
	parts := strings.Split(joined, "/")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return filepath.Join(kept...)
}

// CreateSink opens outputRoot/relPath for writing, creating parent
// directories as needed and truncating any existing file.
func CreateSink(outputRoot, relPath string) (*os.File, error) {
	full := filepath.Join(outputRoot, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.Create(full)
}
