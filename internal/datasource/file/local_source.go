// Package file reads dataset sources from the data directory.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"reportcache/internal/datasource"
)

// Local is one report file on disk.
type Local struct{ path string }

func NewLocal(path string) *Local { return &Local{path: path} }

// Factory is the datasource.Factory used by the cache.
func Factory(path string) datasource.Source { return NewLocal(path) }

func (l *Local) Path() string { return l.path }

// Open returns the file for reading. Errors wrap the underlying fs error, so
// errors.Is(err, fs.ErrNotExist) still identifies a missing report.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("report source: %w", err)
	}
	return f, nil
}

// Stat reports size and modification time, which feed the snapshot
// fingerprint. A directory at the report path is an error.
func (l *Local) Stat(ctx context.Context) (datasource.Info, error) {
	if err := ctx.Err(); err != nil {
		return datasource.Info{}, err
	}
	fi, err := os.Stat(l.path)
	switch {
	case err != nil:
		return datasource.Info{}, fmt.Errorf("report source: %w", err)
	case fi.IsDir():
		return datasource.Info{}, fmt.Errorf("report source %s: is a directory", l.path)
	}
	return datasource.Info{Size: fi.Size(), Modified: fi.ModTime()}, nil
}
