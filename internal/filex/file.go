// Package filex reads local files the client uploads.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxPictureSize caps plant picture uploads.
const MaxPictureSize = 10 << 20

var ErrTooLarge = errors.New("file is too large")

// ReadLimited reads a regular file of at most max bytes.
func ReadLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if fi.Size() > max {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrTooLarge, fi.Size(), max)
	}

	// The file may grow between Stat and Read.
	b, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	return b, nil
}

// ReadPicture reads a picture file for upload.
func ReadPicture(path string) ([]byte, error) {
	return ReadLimited(path, MaxPictureSize)
}
