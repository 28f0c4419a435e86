package query

import (
	"strings"
	"time"

	"reportcache/internal/dataset"
	"reportcache/internal/match"
	"reportcache/internal/transformer/builtin"
	"reportcache/pkg/records"
)

type predicate func(records.Record) bool

// Plan is the compiled form of the filter and search part of a Criteria.
type Plan struct {
	preds   []predicate
	applied []string
}

// Compile resolves c against spec. Unknown parameters and blank values are
// dropped.
func Compile(spec *dataset.Spec, c Criteria) *Plan {
	p := &Plan{}
	for _, f := range spec.Filters {
		raw, ok := c.Filters[f.Param]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if pred := compileFilter(f, strings.TrimSpace(raw)); pred != nil {
			p.preds = append(p.preds, pred)
			p.applied = append(p.applied, f.Param)
		}
	}
	if term := strings.TrimSpace(c.Search); term != "" && len(spec.Search) > 0 {
		p.preds = append(p.preds, searchPredicate(spec.Search, term))
		p.applied = append(p.applied, "search")
	}
	return p
}

// Applied lists the parameter names that produced a predicate, in filter
// table order, with "search" last when a search term was applied.
func (p *Plan) Applied() []string { return append([]string(nil), p.applied...) }

// Match reports whether rec satisfies every predicate.
func (p *Plan) Match(rec records.Record) bool {
	for _, pred := range p.preds {
		if !pred(rec) {
			return false
		}
	}
	return true
}

// Filter returns the matching records in their original order. The result
// is always a fresh slice.
func (p *Plan) Filter(recs []records.Record) []records.Record {
	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func compileFilter(f dataset.Filter, raw string) predicate {
	field := f.Field
	switch f.Op {
	case dataset.Equal, "":
		want := match.Fold(raw)
		return func(r records.Record) bool {
			s, ok := r.Text(field)
			return ok && match.Fold(s) == want
		}
	case dataset.Contains:
		want := match.Fold(raw)
		return func(r records.Record) bool {
			s, ok := r.Text(field)
			return ok && strings.Contains(match.Fold(s), want)
		}
	case dataset.Exact:
		return func(r records.Record) bool {
			s, ok := r.Text(field)
			return ok && s == raw
		}
	case dataset.NumberEqual:
		want, ok := builtin.ParseNumber(raw)
		if !ok {
			return nil
		}
		return func(r records.Record) bool {
			v, ok := r.Number(field)
			return ok && v == want
		}
	case dataset.DateFrom:
		from, ok := builtin.ParseDate(raw, nil)
		if !ok {
			return nil
		}
		return func(r records.Record) bool {
			t, ok := r.Time(field)
			return ok && !t.Before(from)
		}
	case dataset.DateTo:
		to, ok := builtin.ParseDate(raw, nil)
		if !ok {
			return nil
		}
		if dateOnly(raw, to) {
			end := to.AddDate(0, 0, 1)
			return func(r records.Record) bool {
				t, ok := r.Time(field)
				return ok && t.Before(end)
			}
		}
		return func(r records.Record) bool {
			t, ok := r.Time(field)
			return ok && !t.After(to)
		}
	}
	return nil
}

// dateOnly reports whether a bound was given without a clock component, in
// which case it covers the whole day.
func dateOnly(raw string, t time.Time) bool {
	return !strings.Contains(raw, ":") && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

func searchPredicate(fields []string, term string) predicate {
	needle := match.Fold(term)
	return func(r records.Record) bool {
		for _, f := range fields {
			s, ok := r.Text(f)
			if ok && strings.Contains(match.Fold(s), needle) {
				return true
			}
		}
		return false
	}
}
