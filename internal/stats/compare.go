package stats

import (
	"sort"

	"reportcache/pkg/records"
)

func (p *Plan) compare(recs []records.Record, c Comparison) Delta {
	r, _ := p.rate(c.Rate)
	rateOf := func(set []records.Record) float64 {
		return p.rateFrom(r, p.tally(set), len(set))
	}

	switch c.Mode {
	case Periods:
		ps := periods(recs, c.Field, Monthly)
		switch len(ps) {
		case 0:
			return Delta{}
		case 1:
			return Delta{Actual: rateOf(ps[0].recs)}
		}
		return delta(rateOf(ps[len(ps)-1].recs), rateOf(ps[len(ps)-2].recs))

	case Halves:
		dated := make([]records.Record, 0, len(recs))
		for _, rec := range recs {
			if _, ok := rec.Time(c.Field); ok {
				dated = append(dated, rec)
			}
		}
		floor := c.MinRecords
		if floor <= 0 {
			floor = defaultMinRecords
		}
		if len(dated) <= floor {
			return Delta{}
		}
		sort.SliceStable(dated, func(i, j int) bool {
			ti, _ := dated[i].Time(c.Field)
			tj, _ := dated[j].Time(c.Field)
			return ti.Before(tj)
		})
		mid := len(dated) / 2
		return delta(rateOf(dated[mid:]), rateOf(dated[:mid]))
	}
	return Delta{}
}

func delta(actual, previous float64) Delta {
	return Delta{
		Actual:     actual,
		Previous:   previous,
		Difference: Round(actual-previous, 1),
		Available:  true,
	}
}
