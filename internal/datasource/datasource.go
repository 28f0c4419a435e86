// Package datasource abstracts where dataset source files come from.
package datasource

import (
	"context"
	"io"
	"time"
)

// Source is one readable input. Open errors wrap fs.ErrNotExist when the
// input is absent so callers can treat it as empty rather than failed.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Stat(ctx context.Context) (Info, error)
	Path() string
}

// Info describes a source at the time it was inspected.
type Info struct {
	Size     int64
	Modified time.Time
}

// Factory builds the Source for a path.
type Factory func(path string) Source
