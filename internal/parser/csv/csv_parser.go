// Package csv parses delimited source files into records keyed by canonical
// field names. Header cells are matched case- and accent-insensitively
// against an exact mapping table first and keyword fallbacks second.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"reportcache/pkg/records"
)

// Fallback maps the first unclaimed header whose folded text contains
// Keyword to Field.
type Fallback struct {
	Keyword string
	Field   string
}

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header text to canonical keys. Keys are folded
	// with FoldHeader before comparison.
	HeaderMap map[string]string

	// Fallbacks are tried, in order, for canonical fields no header claimed.
	Fallbacks []Fallback

	// DropUnmapped discards columns that neither HeaderMap nor Fallbacks map.
	// Otherwise they are kept under their folded header.
	DropUnmapped bool

	// Logger receives skipped-row warnings. Nil disables logging.
	Logger *zap.Logger

	// MaxLogged caps skipped-row warnings per Parse call. Zero means 400.
	MaxLogged int
}

// Result summarizes one Parse call.
type Result struct {
	Rows    int
	Skipped int
	Padded  int
	Headers []string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt Options
	hr  headerResolver
	log *zap.Logger
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxLogged <= 0 {
		opt.MaxLogged = 400
	}
	return &Parser{opt: opt, hr: newHeaderResolver(opt), log: log}
}

// Parse consumes CSV records from r. Rows that encoding/csv rejects and rows
// wider than the header are skipped and counted. Short rows are padded with
// nil so trailing empty cells dropped by spreadsheet exports do not lose the
// record. An empty input yields no records and no error.
func (p *Parser) Parse(r io.Reader) ([]records.Record, Result, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var (
		keys []string
		res  Result
		out  []records.Record
	)

	if p.opt.HasHeader {
		h, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, res, nil
		}
		if err != nil {
			return nil, res, fmt.Errorf("read csv header: %w", err)
		}
		keys = p.hr.resolve(h)
		res.Headers = append([]string(nil), keys...)
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.skip(&res, line, "parse error", zap.Error(err))
			continue
		}
		if isBlank(row) {
			continue
		}
		if keys == nil {
			keys = make([]string, len(row))
			for i := range keys {
				keys[i] = fmt.Sprintf("col_%d", i)
			}
		}
		if len(row) > len(keys) {
			p.skip(&res, line, "too many fields", zap.Int("expected", len(keys)), zap.Int("got", len(row)))
			continue
		}
		if len(row) < len(keys) {
			res.Padded++
		}

		rec := make(records.Record, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			var val string
			if i < len(row) {
				val = row[i]
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[key] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	res.Rows = len(out)
	return out, res, nil
}

func (p *Parser) skip(res *Result, line int, reason string, fields ...zap.Field) {
	if res.Skipped < p.opt.MaxLogged {
		p.log.Warn("skipping csv row", append([]zap.Field{zap.Int("line", line), zap.String("reason", reason)}, fields...)...)
	}
	res.Skipped++
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
