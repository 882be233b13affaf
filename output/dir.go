package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// ErrTooManyOutputDirs means every candidate output directory exists.
var ErrTooManyOutputDirs = errors.New("too many output directories")

const (
	DefaultPrefix  = "output_"
	DefaultMaxDirs = 1000
)

// Allocate creates and returns the first free "<prefix><N>" directory under
// root, N = 0, 1, ... max-1. Creation is the existence test, so an existing
// directory is never reused; concurrent runs may still interleave.
func Allocate(root, prefix string, max int) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if max <= 0 {
		max = DefaultMaxDirs
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	for i := 0; i < max; i++ {
		dir := filepath.Join(root, prefix+strconv.Itoa(i))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %d in use under %s", ErrTooManyOutputDirs, max, root)
}

// Formats selects the sinks opened for a run directory.
type Formats struct {
	CSV    bool
	XLSX   bool
	SQLite bool
}

// Open returns the sinks for dir selected by f.
func Open(dir string, f Formats) (Sink, error) {
	var m Multi
	if f.CSV {
		m = append(m, NewCSVSink(dir))
	}
	if f.XLSX {
		m = append(m, NewXLSXSink(dir))
	}
	if f.SQLite {
		s, err := NewSQLiteSink(dir)
		if err != nil {
			m.Close()
			return nil, err
		}
		m = append(m, s)
	}
	if len(m) == 0 {
		return nil, errors.New("no output format selected")
	}
	return m, nil
}

// Dir is an allocated run directory with its sinks open.
type Dir struct {
	Path string
	Sink
}

// Create allocates a run directory under root and opens its sinks.
func Create(root, prefix string, max int, f Formats) (*Dir, error) {
	path, err := Allocate(root, prefix, max)
	if err != nil {
		return nil, err
	}
	s, err := Open(path, f)
	if err != nil {
		return nil, err
	}
	return &Dir{Path: path, Sink: s}, nil
}
