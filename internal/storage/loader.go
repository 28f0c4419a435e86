package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"reportcache/internal/metrics"
)

// CopyFn is a sink's bulk insert: rows are aligned to columns and the
// result is the number of rows the sink reports as written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// batcher accumulates rows for one LoadBatches call.
type batcher struct {
	columns []string
	copyFn  CopyFn
	log     *zap.Logger

	pending [][]any
	total   int64
	flushes int64
	started time.Time
}

func (b *batcher) flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	n, err := b.copyFn(ctx, b.columns, b.pending)
	b.total += n
	b.pending = b.pending[:0]
	if err != nil {
		b.log.Warn("export batch failed",
			zap.Int64("written", n),
			zap.Int64("total", b.total),
			zap.Error(err),
		)
		return err
	}
	b.flushes++
	metrics.RecordBatches("export", 1)
	b.log.Debug("export batch written",
		zap.Int64("batch", b.flushes),
		zap.Int64("written", n),
		zap.Int64("total", b.total),
		zap.Duration("elapsed", time.Since(b.started).Truncate(time.Millisecond)),
	)
	return nil
}

// LoadBatches drains in, calling copyFn once per batchSize rows and once for
// the remainder. It returns the running total and the first copy error, or
// ctx.Err() if the context ends before in is closed.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
	log *zap.Logger,
) (int64, error) {
	switch {
	case batchSize <= 0:
		return 0, errors.New("storage: batch size must be positive")
	case copyFn == nil:
		return 0, errors.New("storage: nil copy function")
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := &batcher{
		columns: columns,
		copyFn:  copyFn,
		log:     log,
		pending: make([][]any, 0, batchSize),
		started: time.Now(),
	}

	for {
		select {
		case <-ctx.Done():
			return b.total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				return b.total, b.flush(ctx)
			}
			b.pending = append(b.pending, row)
			if len(b.pending) < batchSize {
				continue
			}
			if err := b.flush(ctx); err != nil {
				return b.total, err
			}
		}
	}
}
