// Package fileio reads and writes whole data files.
//
// The helpers follow a log-and-return-absent convention: failures are
// logged through the fileio component logger and reported to the caller
// as a false ok value rather than an error.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio/v2"

	xlog "github.com/dshills/toolz/internal/log"
)

// Read returns the contents of the file at path. An empty path is absent.
func Read(path string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger := xlog.WithComponent("fileio")
		logger.Error().Err(err).Str(xlog.FieldPath, path).Msg("read file")
		return nil, false
	}
	return data, true
}

// Save writes data to path, creating the file if it does not exist and
// replacing it atomically otherwise. It returns the absolute path of the
// written file.
func Save(data []byte, path string) (string, bool) {
	abs, err := WriteAtomic(path, data)
	if err != nil {
		logger := xlog.WithComponent("fileio")
		logger.Error().Err(err).Str(xlog.FieldPath, path).Msg("save file")
		return "", false
	}
	return abs, true
}

// WriteAtomic writes data to path through a pending file that is synced
// and renamed over the destination. Existing permissions are preserved.
func WriteAtomic(path string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("write file: empty path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}

	if err := renameio.WriteFile(abs, data, 0o644, renameio.WithExistingPermissions()); err != nil {
		return "", fmt.Errorf("write file %s: %w", abs, err)
	}
	return abs, nil
}

// UTF8String returns data as a string when it is valid UTF-8.
func UTF8String(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
