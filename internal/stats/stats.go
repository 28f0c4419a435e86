// Package stats is the aggregation engine. It turns a filtered slice of
// records into a Bundle: named counts, percentage rates, categorical
// breakdowns, numeric summaries, an evolution series, period comparisons,
// and a problem ranking, all driven by a compiled Report.
//
// Every percentage goes through Percent, which rounds to one decimal,
// clamps to [0, 100], and reports 0 for an empty denominator. Evolution
// points and comparison sides reuse the same tally and rate code as the
// whole-set figures, so a per-period rate is always computed the way the
// headline rate is.
package stats

import (
	"math"

	"reportcache/pkg/records"
)

// Env carries the inputs Compute cannot derive from the records alone.
type Env struct {
	Dataset   string
	Externals map[string]int
	Quality   map[string]int
	Filters   []string
}

// Bucket is one category of a breakdown.
type Bucket struct {
	Category string   `json:"category"`
	Count    int      `json:"count"`
	Rate     *float64 `json:"rate,omitempty"`
	Sum      *float64 `json:"sum,omitempty"`
}

// Point is one period of an evolution series.
type Point struct {
	Period string             `json:"period"`
	Label  string             `json:"label"`
	Total  int                `json:"total"`
	Counts map[string]int     `json:"counts"`
	Rates  map[string]float64 `json:"rates"`
}

// Delta compares a rate across two slices of the records. Available is
// false when fewer than two comparable slices exist.
type Delta struct {
	Actual     float64 `json:"actual"`
	Previous   float64 `json:"previous"`
	Difference float64 `json:"difference"`
	Available  bool    `json:"available"`
}

// Ranked is one entry of a problem ranking.
type Ranked struct {
	Category string         `json:"category"`
	Total    int            `json:"total"`
	Score    float64        `json:"score"`
	Counts   map[string]int `json:"counts"`
}

// Bundle is the aggregate view of one filtered dataset.
type Bundle struct {
	Dataset     string              `json:"dataset"`
	Total       int                 `json:"total"`
	Counts      map[string]int      `json:"counts"`
	Rates       map[string]float64  `json:"rates"`
	Numbers     map[string]float64  `json:"numbers"`
	Breakdowns  map[string][]Bucket `json:"breakdowns"`
	Evolution   []Point             `json:"evolution"`
	Comparisons map[string]Delta    `json:"comparisons"`
	Ranking     []Ranked            `json:"ranking"`
	Quality     map[string]int      `json:"quality"`
	Filters     []string            `json:"filters,omitempty"`

	// Ratios holds the operands behind Rates.
	Ratios map[string]Ratio `json:"-"`
}

// Ratio is the numerator and denominator of one rate.
type Ratio struct {
	Num, Den int
}

// Defined reports whether the denominator is positive.
func (r Ratio) Defined() bool { return r.Den > 0 }

// Exact is Num/Den as an unrounded percentage clamped to [0, 100], or 0 when
// the ratio is undefined.
func (r Ratio) Exact() float64 {
	if !r.Defined() || r.Num <= 0 {
		return 0
	}
	return math.Min(float64(r.Num)*100/float64(r.Den), 100)
}

// Compute aggregates recs according to p. An empty recs yields a bundle with
// every configured key present and zero-valued.
func Compute(recs []records.Record, p *Plan, env Env) Bundle {
	r := p.report
	b := Bundle{
		Dataset:     env.Dataset,
		Total:       len(recs),
		Counts:      p.tally(recs),
		Numbers:     make(map[string]float64, len(r.Numbers)),
		Breakdowns:  make(map[string][]Bucket, len(r.Breakdowns)),
		Evolution:   []Point{},
		Comparisons: make(map[string]Delta, len(r.Comparisons)),
		Ranking:     []Ranked{},
		Quality:     make(map[string]int, len(env.Quality)),
		Filters:     env.Filters,
	}
	for _, e := range r.Externals {
		b.Counts[e.Name] = env.Externals[e.Name]
	}
	b.Ratios = p.ratios(b.Counts, len(recs))
	b.Rates = make(map[string]float64, len(b.Ratios))
	for name, q := range b.Ratios {
		b.Rates[name] = Percent(q.Num, q.Den)
	}

	for _, bd := range r.Breakdowns {
		b.Breakdowns[bd.Name] = p.breakdown(recs, bd)
	}
	for _, n := range r.Numbers {
		if v, ok := reduce(recs, n); ok {
			b.Numbers[n.Name] = v
		}
	}
	if r.Evolution != nil {
		b.Evolution = p.evolution(recs, *r.Evolution)
	}
	for _, c := range r.Comparisons {
		b.Comparisons[c.Name] = p.compare(recs, c)
	}
	if r.Ranking != nil {
		b.Ranking = p.rank(recs, *r.Ranking)
	}
	for k, v := range env.Quality {
		b.Quality[k] = v
	}
	return b
}

// tally evaluates every count condition once per record.
func (p *Plan) tally(recs []records.Record) map[string]int {
	out := make(map[string]int, len(p.counts)+len(p.external))
	for _, c := range p.counts {
		out[c.name] = 0
	}
	for _, rec := range recs {
		for _, c := range p.counts {
			if c.m.Match(rec) {
				out[c.name]++
			}
		}
	}
	return out
}

// ratios derives the operands of every configured rate from a tally over
// total records. Externals missing from counts contribute zero.
func (p *Plan) ratios(counts map[string]int, total int) map[string]Ratio {
	out := make(map[string]Ratio, len(p.report.Rates))
	for _, r := range p.report.Rates {
		out[r.Name] = ratioOf(r, counts, total)
	}
	return out
}

func (p *Plan) rateFrom(r Rate, counts map[string]int, total int) float64 {
	q := ratioOf(r, counts, total)
	return Percent(q.Num, q.Den)
}

func ratioOf(r Rate, counts map[string]int, total int) Ratio {
	q := Ratio{Num: counts[r.Of], Den: total}
	if len(r.Over) > 0 {
		q.Den = 0
		for _, o := range r.Over {
			q.Den += counts[o]
		}
	}
	for _, o := range r.Plus {
		q.Num += counts[o]
	}
	return q
}

// Percent returns num/den as a percentage rounded to one decimal and clamped
// to [0, 100]. A non-positive denominator yields 0.
func Percent(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	v := Round(float64(num)*100/float64(den), 1)
	if v > 100 {
		return 100
	}
	return v
}

// Round rounds v to the given number of decimals, halves away from zero.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func reduce(recs []records.Record, n Number) (float64, bool) {
	var (
		acc  float64
		seen int
	)
	for _, rec := range recs {
		v, ok := rec.Number(n.Field)
		if !ok || math.IsNaN(v) {
			continue
		}
		switch {
		case seen == 0:
			acc = v
		case n.Op == Min:
			acc = math.Min(acc, v)
		case n.Op == Max:
			acc = math.Max(acc, v)
		default:
			acc += v
		}
		seen++
	}
	if seen == 0 {
		return 0, false
	}
	if n.Op == Mean || n.Op == "" {
		acc /= float64(seen)
	}
	dec := n.Decimals
	if dec == 0 {
		dec = 1
	}
	return Round(acc, dec), true
}
