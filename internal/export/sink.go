package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reportcache/internal/metrics"
	"reportcache/internal/storage"
)

// DefaultBatchSize is the number of rows per bulk copy.
const DefaultBatchSize = 1000

// Sink describes the destination of ToRepository.
type Sink struct {
	Kind      string // storage kind; selects the DDL dialect
	Table     string
	BatchSize int // <= 0 means DefaultBatchSize
	// Replace empties the table before loading, so the table mirrors the
	// current selection instead of accumulating earlier exports.
	Replace bool
}

// ToRepository creates the destination table when needed and streams the
// rows of t into repo in batches.
func ToRepository(ctx context.Context, repo storage.Repository, t Table, s Sink, log *zap.Logger) (int64, error) {
	if len(t.Rows) == 0 {
		return 0, ErrNoData
	}
	if log == nil {
		log = zap.NewNop()
	}
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	cols := t.Fields()
	if err := storage.EnsureTable(ctx, s.Kind, repo, s.Table, cols); err != nil {
		return 0, fmt.Errorf("export %s: ensure table: %w", t.Name, err)
	}
	if s.Replace {
		if err := repo.Truncate(ctx); err != nil {
			return 0, fmt.Errorf("export %s: %w", t.Name, err)
		}
		log.Debug("export table emptied", zap.String("dataset", t.Name), zap.String("table", s.Table))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any, batchSize)
	go func() {
		defer close(rows)
		for _, r := range t.Rows {
			select {
			case rows <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	n, err := storage.LoadBatches(ctx, cols, rows, batchSize, repo.CopyFrom, log)
	metrics.RecordRow(t.Name, "exported", n)
	if err != nil {
		return n, fmt.Errorf("export %s: %w", t.Name, err)
	}
	return n, nil
}
