package storage

import (
	"context"
	"fmt"
	"sync"
)

// CreateTableFn renders the dialect-specific statement that creates table
// with every column as nullable text, when it does not already exist.
type CreateTableFn func(table string, columns []string) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]CreateTableFn{}
)

// RegisterDDL registers (or replaces) the CREATE TABLE builder for kind. It
// is typically called from a backend's init.
func RegisterDDL(kind string, fn CreateTableFn) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates table on repo using the builder registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, columns []string) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	stmt, err := fn(table, columns)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
