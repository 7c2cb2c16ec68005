package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/pagecheck/internal/errors"
)

// MaxFileSize is the limit applied by ReadFileWithLimit (1MB). Preset and
// config files are far smaller.
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded its size limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads a file up to MaxFileSize.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFileMax(path, MaxFileSize)
}

// ReadFileMax reads a file of at most limit bytes. A larger file yields
// ErrFileTooLarge.
func ReadFileMax(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast on a regular file that is already too large.
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%d bytes, limit %d", info.Size(), limit)
	}
	return ReadAllMax(f, limit)
}

// ReadAllMax reads r to the end, failing with ErrFileTooLarge past limit
// bytes. It serves streams such as stdin that have no size up front.
func ReadAllMax(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "limit %d bytes", limit)
	}
	return data, nil
}
