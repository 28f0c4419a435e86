package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reportcache/internal/storage"
	"reportcache/pkg/records"
)

var cols = []Column{
	{Field: "id", Header: "ID"},
	{Field: "comuna", Header: "Comuna"},
	{Field: "fecha"},
	{Field: "dias", Header: "Días"},
}

func sample() []records.Record {
	return []records.Record{
		{"id": 1, "comuna": "MAIPU", "fecha": time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "dias": 2.5},
		{"id": 2, "comuna": "RENCA, NORTE", "fecha": nil, "dias": nil},
	}
}

func TestBuild(t *testing.T) {
	tbl, err := Build("nncc", cols, sample())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := [][]any{
		{"1", "MAIPU", "2025-01-05", "2.5"},
		{"2", "RENCA, NORTE", nil, nil},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id", "comuna", "fecha", "dias"}, tbl.Fields()); diff != "" {
		t.Fatalf("fields mismatch:\n%s", diff)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build("nncc", cols, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("want ErrNoData, got %v", err)
	}
	if _, err := Build("nncc", nil, sample()); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

/*
TestWriteCSV checks the header uses column titles, quoting survives embedded
delimiters, and missing cells are written empty.
*/
func TestWriteCSV(t *testing.T) {
	tbl, err := Build("nncc", cols, sample())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "ID,Comuna,fecha,Días\n" +
		"1,MAIPU,2025-01-05,2.5\n" +
		"2,\"RENCA, NORTE\",,\n"
	if got := buf.String(); got != want {
		t.Fatalf("csv:\n%s\nwant:\n%s", got, want)
	}

	if err := WriteCSV(&buf, Table{Columns: cols}); !errors.Is(err, ErrNoData) {
		t.Fatalf("want ErrNoData, got %v", err)
	}
}

type captureRepo struct {
	mu        sync.Mutex
	execs     []string
	rows      [][]any
	failAt    int
	calls     int
	truncated bool
}

func (c *captureRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failAt > 0 && c.calls == c.failAt {
		return 0, errors.New("disk full")
	}
	for _, r := range rows {
		c.rows = append(c.rows, append([]any(nil), r...))
	}
	return int64(len(rows)), nil
}

func (c *captureRepo) Exec(_ context.Context, sql string) error {
	c.execs = append(c.execs, sql)
	return nil
}

func (c *captureRepo) Truncate(context.Context) error {
	c.rows = nil
	c.truncated = true
	return nil
}

func (c *captureRepo) Close() {}

func init() {
	storage.RegisterDDL("export-test", func(table string, columns []string) (string, error) {
		return "CREATE " + table + " " + strings.Join(columns, ","), nil
	})
}

func TestToRepository(t *testing.T) {
	tbl, err := Build("nncc", cols, sample())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	repo := &captureRepo{}
	n, err := ToRepository(context.Background(), repo, tbl, Sink{Kind: "export-test", Table: "rep_nncc", BatchSize: 1}, nil)
	if err != nil {
		t.Fatalf("ToRepository: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"CREATE rep_nncc id,comuna,fecha,dias"}, repo.execs); diff != "" {
		t.Fatalf("ddl mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(tbl.Rows, repo.rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestToRepository_Errors(t *testing.T) {
	tbl, _ := Build("nncc", cols, sample())

	if _, err := ToRepository(context.Background(), &captureRepo{}, Table{}, Sink{Kind: "export-test", Table: "t"}, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("want ErrNoData, got %v", err)
	}
	if _, err := ToRepository(context.Background(), &captureRepo{}, tbl, Sink{Kind: "no-such-kind", Table: "t"}, nil); err == nil {
		t.Fatal("expected ensure table error")
	}

	repo := &captureRepo{failAt: 2}
	n, err := ToRepository(context.Background(), repo, tbl, Sink{Kind: "export-test", Table: "t", BatchSize: 1}, nil)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("want copy error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("exported %d before failure, want 1", n)
	}
}

/*
A replacing export empties the table after ensuring it exists, so only the
new rows remain.
*/
func TestToRepository_Replace(t *testing.T) {
	tbl, _ := Build("nncc", cols, sample())
	repo := &captureRepo{rows: [][]any{{"stale"}}}

	n, err := ToRepository(context.Background(), repo, tbl, Sink{Kind: "export-test", Table: "t", Replace: true}, nil)
	if err != nil {
		t.Fatalf("ToRepository: %v", err)
	}
	if !repo.truncated || n != 2 {
		t.Fatalf("truncated=%v n=%d, want true and 2", repo.truncated, n)
	}
	if diff := cmp.Diff(tbl.Rows, repo.rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}
