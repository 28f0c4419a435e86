package stats

import (
	"fmt"

	"reportcache/internal/match"
)

// Count is a named number of records satisfying a condition.
type Count struct {
	Name string          `json:"name" yaml:"name"`
	When match.Condition `json:"when" yaml:"when"`
}

// External is a named count taken from another dataset, such as the
// population of requested orders a completion rate is measured against.
// The engine resolves externals before Compute runs.
type External struct {
	Name    string           `json:"name" yaml:"name"`
	Dataset string           `json:"dataset" yaml:"dataset"`
	When    *match.Condition `json:"when,omitempty" yaml:"when,omitempty"`
}

// Rate is Of (plus any Plus counts) divided by the sum of Over, as a
// percentage. An empty Over means the filtered record total. Entries of
// Plus and Over name counts or externals.
type Rate struct {
	Name string   `json:"name" yaml:"name"`
	Of   string   `json:"of" yaml:"of"`
	Plus []string `json:"plus,omitempty" yaml:"plus,omitempty"`
	Over []string `json:"over,omitempty" yaml:"over,omitempty"`
}

// Breakdown groups records by Field. Rate names a count whose condition is
// measured within each bucket; Sum names a numeric field totalled per bucket.
type Breakdown struct {
	Name  string `json:"name" yaml:"name"`
	Field string `json:"field" yaml:"field"`
	Top   int    `json:"top,omitempty" yaml:"top,omitempty"`
	Rate  string `json:"rate,omitempty" yaml:"rate,omitempty"`
	Sum   string `json:"sum,omitempty" yaml:"sum,omitempty"`
}

// NumberOp selects the reduction of a Number.
type NumberOp string

const (
	Mean NumberOp = "mean"
	Min  NumberOp = "min"
	Max  NumberOp = "max"
	Sum  NumberOp = "sum"
)

// Number reduces the non-null numeric values of Field.
type Number struct {
	Name     string   `json:"name" yaml:"name"`
	Field    string   `json:"field" yaml:"field"`
	Op       NumberOp `json:"op" yaml:"op"`
	Decimals int      `json:"decimals,omitempty" yaml:"decimals,omitempty"`
}

// Granularity of an evolution series.
type Granularity string

const (
	Monthly Granularity = "month"
	Daily   Granularity = "day"
)

// Evolution configures the chronological series over the date Field.
type Evolution struct {
	Field  string      `json:"field" yaml:"field"`
	By     Granularity `json:"by,omitempty" yaml:"by,omitempty"`
	Window int         `json:"window,omitempty" yaml:"window,omitempty"`
	Counts []string    `json:"counts,omitempty" yaml:"counts,omitempty"`
	Rates  []string    `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// CompareMode selects how the two sides of a comparison are formed.
type CompareMode string

const (
	// Periods compares the most recent month against the one before it.
	Periods CompareMode = "periods"
	// Halves splits the dated records, sorted chronologically, in two.
	Halves CompareMode = "halves"
)

// Comparison reports Rate for two consecutive slices of the records.
type Comparison struct {
	Name       string      `json:"name" yaml:"name"`
	Rate       string      `json:"rate" yaml:"rate"`
	Field      string      `json:"field" yaml:"field"`
	Mode       CompareMode `json:"mode" yaml:"mode"`
	MinRecords int         `json:"min_records,omitempty" yaml:"min_records,omitempty"`
}

// Weight scales one count in a ranking score.
type Weight struct {
	Count  string  `json:"count" yaml:"count"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Ranking orders the values of Field by the weighted sum of negative
// outcome counts, ignoring values with fewer than MinSample records.
type Ranking struct {
	Field     string   `json:"field" yaml:"field"`
	Weights   []Weight `json:"weights" yaml:"weights"`
	MinSample int      `json:"min_sample,omitempty" yaml:"min_sample,omitempty"`
	Top       int      `json:"top,omitempty" yaml:"top,omitempty"`
}

// Report is the declarative aggregation of one dataset.
type Report struct {
	Counts      []Count      `json:"counts" yaml:"counts"`
	Externals   []External   `json:"externals,omitempty" yaml:"externals,omitempty"`
	Rates       []Rate       `json:"rates" yaml:"rates"`
	Breakdowns  []Breakdown  `json:"breakdowns" yaml:"breakdowns"`
	Numbers     []Number     `json:"numbers,omitempty" yaml:"numbers,omitempty"`
	Evolution   *Evolution   `json:"evolution,omitempty" yaml:"evolution,omitempty"`
	Comparisons []Comparison `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Ranking     *Ranking     `json:"ranking,omitempty" yaml:"ranking,omitempty"`
}

const (
	defaultWindow     = 12
	defaultMinRecords = 10
	defaultMinSample  = 5
)

// Plan is a compiled Report. It is safe for concurrent use.
type Plan struct {
	report   Report
	counts   []compiledCount
	byName   map[string]*match.Matcher
	external map[string]struct{}
}

type compiledCount struct {
	name string
	m    *match.Matcher
}

// Compile checks every reference in r and compiles its conditions.
func Compile(r Report) (*Plan, error) {
	p := &Plan{
		report:   r,
		byName:   make(map[string]*match.Matcher, len(r.Counts)),
		external: make(map[string]struct{}, len(r.Externals)),
	}
	for i, c := range r.Counts {
		if c.Name == "" {
			return nil, fmt.Errorf("stats: counts[%d] has no name", i)
		}
		if _, dup := p.byName[c.Name]; dup {
			return nil, fmt.Errorf("stats: duplicate count %q", c.Name)
		}
		m, err := match.Compile(c.When)
		if err != nil {
			return nil, fmt.Errorf("stats: count %q: %w", c.Name, err)
		}
		p.byName[c.Name] = m
		p.counts = append(p.counts, compiledCount{name: c.Name, m: m})
	}
	for _, e := range r.Externals {
		if e.Name == "" || e.Dataset == "" {
			return nil, fmt.Errorf("stats: external needs name and dataset")
		}
		if _, dup := p.byName[e.Name]; dup {
			return nil, fmt.Errorf("stats: external %q shadows a count", e.Name)
		}
		p.external[e.Name] = struct{}{}
	}

	rates := make(map[string]struct{}, len(r.Rates))
	for _, rt := range r.Rates {
		if !p.isCount(rt.Of) {
			return nil, fmt.Errorf("stats: rate %q: unknown numerator %q", rt.Name, rt.Of)
		}
		for _, o := range rt.Plus {
			if !p.isCount(o) {
				return nil, fmt.Errorf("stats: rate %q: unknown numerator %q", rt.Name, o)
			}
		}
		for _, o := range rt.Over {
			if !p.isCount(o) {
				return nil, fmt.Errorf("stats: rate %q: unknown denominator %q", rt.Name, o)
			}
		}
		rates[rt.Name] = struct{}{}
	}
	for _, b := range r.Breakdowns {
		if b.Field == "" {
			return nil, fmt.Errorf("stats: breakdown %q has no field", b.Name)
		}
		if b.Rate != "" && p.byName[b.Rate] == nil {
			return nil, fmt.Errorf("stats: breakdown %q: unknown count %q", b.Name, b.Rate)
		}
	}
	if ev := r.Evolution; ev != nil {
		for _, c := range ev.Counts {
			if p.byName[c] == nil {
				return nil, fmt.Errorf("stats: evolution: unknown count %q", c)
			}
		}
		for _, rt := range ev.Rates {
			if _, ok := rates[rt]; !ok {
				return nil, fmt.Errorf("stats: evolution: unknown rate %q", rt)
			}
		}
	}
	for _, c := range r.Comparisons {
		if _, ok := rates[c.Rate]; !ok {
			return nil, fmt.Errorf("stats: comparison %q: unknown rate %q", c.Name, c.Rate)
		}
		if c.Mode != Periods && c.Mode != Halves {
			return nil, fmt.Errorf("stats: comparison %q: unknown mode %q", c.Name, c.Mode)
		}
	}
	if rk := r.Ranking; rk != nil {
		for _, w := range rk.Weights {
			if p.byName[w.Count] == nil {
				return nil, fmt.Errorf("stats: ranking: unknown count %q", w.Count)
			}
		}
	}
	return p, nil
}

// Report returns the report the plan was compiled from.
func (p *Plan) Report() Report { return p.report }

func (p *Plan) isCount(name string) bool {
	if _, ok := p.byName[name]; ok {
		return true
	}
	_, ok := p.external[name]
	return ok
}

func (p *Plan) rate(name string) (Rate, bool) {
	for _, r := range p.report.Rates {
		if r.Name == name {
			return r, true
		}
	}
	return Rate{}, false
}
