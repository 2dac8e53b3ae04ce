package state

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultTailLines = 50
	DefaultTailBytes = 2 << 20
)

// TailLines returns the last tailLines lines of the file at path, reading at most maxBytes
// from the end. It also returns the file size, which Follow uses as its starting offset.
func TailLines(path string, tailLines int, maxBytes int64) ([]string, int64, error) {
	if path == "" {
		return nil, 0, errors.New("missing path")
	}
	if tailLines <= 0 {
		tailLines = DefaultTailLines
	}
	if maxBytes <= 0 {
		maxBytes = DefaultTailBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open log")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Wrap(err, "stat log")
	}
	size := info.Size()
	start := int64(0)
	if size > maxBytes {
		start = size - maxBytes
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, 0, errors.Wrap(err, "seek log")
	}
	b, err := io.ReadAll(io.LimitReader(f, size-start))
	if err != nil {
		return nil, 0, errors.Wrap(err, "read log")
	}
	if start > 0 {
		// drop the partial first line
		if i := bytes.IndexByte(b, '\n'); i >= 0 && i+1 < len(b) {
			b = b[i+1:]
		}
	}
	if len(b) == 0 {
		return []string{}, size, nil
	}

	lines := strings.Split(string(b), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > tailLines {
		lines = append([]string{}, lines[len(lines)-tailLines:]...)
	}
	return lines, size, nil
}
