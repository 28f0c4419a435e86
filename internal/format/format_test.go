package format_test

import (
	"strings"
	"testing"
	"time"

	"reportcache/internal/export"
	"reportcache/internal/format"
	"reportcache/pkg/records"
)

func TestASCII_Table(t *testing.T) {
	tb := format.NewTable(format.ASCII, format.Column{Header: "Comuna"}, format.Column{Header: "Total", Right: true})
	tb.Row("MAIPU", 12)
	tb.Row("RENCA", nil)
	out := tb.String()

	for _, want := range []string{"COMUNA", "MAIPU", "12", "───"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<nil>") {
		t.Errorf("nil must render as an empty cell:\n%s", out)
	}
}

func TestMarkdown_Footer(t *testing.T) {
	tb := format.NewTable(format.Markdown, format.Column{Header: "Zona"}, format.Column{Header: "Total"})
	tb.Row("NORTE", 10)
	tb.Footer("TOTAL", 10)
	out := tb.String()

	if !strings.Contains(out, "| Zona") {
		t.Errorf("expected markdown header:\n%s", out)
	}
	if !strings.Contains(out, "TOTAL") {
		t.Errorf("expected footer:\n%s", out)
	}
}

/*
Export uses column titles and renders dates in the export layout.
*/
func TestExport(t *testing.T) {
	et := export.Table{
		Name: "corte",
		Columns: []export.Column{
			{Field: "id", Header: "ID"},
			{Field: "fecha_inspeccion"},
		},
		Rows: [][]any{{"1", "2025-03-05"}, {"2", nil}},
	}
	out := format.Export(format.Markdown, et)
	for _, want := range []string{"ID", "fecha_inspeccion", "2025-03-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRecords(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "fecha": time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "monto": 2.5},
	}
	out := format.Records(format.Markdown, []string{"id", "fecha", "monto"}, recs).String()
	for _, want := range []string{"2025-01-05", "2.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
