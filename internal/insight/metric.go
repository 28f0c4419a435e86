package insight

import (
	"strings"

	"reportcache/internal/stats"
)

// Value is a resolved metric reference.
type Value struct {
	Value    float64
	Category string
	Count    int
	Previous float64
	Actual   float64
}

// Resolve looks up ref in b. ok is false when the metric does not exist or
// has no usable value.
func Resolve(b stats.Bundle, ref string) (Value, bool) {
	kind, name, _ := strings.Cut(ref, ".")
	switch kind {
	case "total":
		return Value{Value: float64(b.Total), Count: b.Total}, true

	case "counts":
		n, ok := b.Counts[name]
		return Value{Value: float64(n), Count: n}, ok

	case "rates":
		if q, known := b.Ratios[name]; known && !q.Defined() {
			return Value{}, false
		}
		r, ok := b.Rates[name]
		return Value{Value: r}, ok

	case "ratios":
		q, ok := b.Ratios[name]
		if !ok || !q.Defined() {
			return Value{}, false
		}
		return Value{Value: q.Exact(), Count: q.Den}, true

	case "numbers":
		n, ok := b.Numbers[name]
		return Value{Value: n}, ok

	case "comparisons":
		d, ok := b.Comparisons[name]
		if !ok || !d.Available {
			return Value{}, false
		}
		return Value{Value: d.Difference, Previous: d.Previous, Actual: d.Actual}, true

	case "breakdowns":
		bs := b.Breakdowns[name]
		if len(bs) == 0 {
			return Value{}, false
		}
		top := bs[0]
		return Value{Value: float64(top.Count), Category: top.Category, Count: top.Count}, true

	case "ranking":
		if len(b.Ranking) == 0 {
			return Value{}, false
		}
		top := b.Ranking[0]
		return Value{Value: top.Score, Category: top.Category, Count: top.Total}, true

	case "spread":
		bs := b.Breakdowns[name]
		if len(bs) < 2 {
			return Value{}, false
		}
		hi, lo := bs[0], bs[len(bs)-1]
		if lo.Count == 0 {
			return Value{}, false
		}
		return Value{
			Value:    float64(hi.Count) / float64(lo.Count),
			Category: hi.Category,
			Count:    hi.Count,
		}, true
	}
	return Value{}, false
}
