// Package format renders query pages, export tables, and summaries as
// terminal or Markdown tables.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reportcache/internal/export"
	"reportcache/pkg/records"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// Column configures one rendered column.
type Column struct {
	Header   string
	MaxWidth int // wrap content beyond this width; 0 is unlimited
	Right    bool
}

// Table accumulates rows and renders them in its Mode.
type Table struct {
	w    table.Writer
	mode Mode
}

// NewTable returns an empty table with the given columns.
func NewTable(m Mode, cols ...Column) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}

	header := make(table.Row, len(cols))
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header[i] = c.Header
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: c.MaxWidth}
		if c.Right {
			cfg.Align = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cols) > 0 {
		w.AppendHeader(header)
		w.SetColumnConfigs(cfgs)
	}
	return &Table{w: w, mode: m}
}

// Row appends one row. Values are rendered like exported cells: dates as
// YYYY-MM-DD and nil as an empty cell.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	for i, v := range vals {
		row[i] = records.Format(v)
	}
	t.w.AppendRow(row)
}

// Footer appends a footer row.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.w.AppendFooter(row)
}

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

// Export renders an export table, honouring its column titles and widths.
func Export(m Mode, et export.Table) string {
	cols := make([]Column, len(et.Columns))
	for i, c := range et.Columns {
		cols[i] = Column{Header: c.Title(), MaxWidth: c.Width}
	}
	t := NewTable(m, cols...)
	for _, r := range et.Rows {
		t.Row(r...)
	}
	return t.String()
}

// Records renders recs with one column per field.
func Records(m Mode, fields []string, recs []records.Record) *Table {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Header: f, MaxWidth: 40}
	}
	t := NewTable(m, cols...)
	for _, r := range recs {
		vals := make([]any, len(fields))
		for i, f := range fields {
			vals[i] = r[f]
		}
		t.Row(vals...)
	}
	return t
}
