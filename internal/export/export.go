// Package export turns a filtered, unpaginated record set into plain rows and
// columns and hands them to a sink: a delimited file or a database table
// reached through the storage factory. Presentation concerns such as cell
// styling stay with whoever consumes the Table; Width is passed through as a
// hint only.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"reportcache/pkg/records"
)

// ErrNoData is returned when an export would produce zero rows.
var ErrNoData = errors.New("no data to export")

// Column is one exported column.
type Column struct {
	Field  string `json:"field" yaml:"field"`
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
}

// Title returns the header text, defaulting to the field name.
func (c Column) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Field
}

// Table is the row/column payload of an export. Cells are strings, or nil
// for missing values.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Fields returns the column field names in order.
func (t Table) Fields() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Field
	}
	return out
}

// Build renders recs into a Table with the given column order. It fails with
// ErrNoData when recs is empty.
func Build(name string, cols []Column, recs []records.Record) (Table, error) {
	if len(recs) == 0 {
		return Table{}, ErrNoData
	}
	if len(cols) == 0 {
		return Table{}, fmt.Errorf("export %s: no columns configured", name)
	}
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			if s := records.Format(rec[c.Field]); s != "" {
				row[i] = s
			}
		}
		rows = append(rows, row)
	}
	return Table{Name: name, Columns: cols, Rows: rows}, nil
}

// WriteCSV writes t with a header row using the column titles.
func WriteCSV(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	head := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = c.Title()
	}
	if err := cw.Write(head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			line[i] = records.Format(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
