package stats

import (
	"sort"

	"reportcache/pkg/records"
)

func (p *Plan) rank(recs []records.Record, rk Ranking) []Ranked {
	minSample := rk.MinSample
	if minSample <= 0 {
		minSample = defaultMinSample
	}

	var out []Ranked
	for _, g := range groupBy(recs, rk.Field) {
		if len(g.recs) < minSample {
			continue
		}
		entry := Ranked{
			Category: g.category,
			Total:    len(g.recs),
			Counts:   make(map[string]int, len(rk.Weights)),
		}
		for _, w := range rk.Weights {
			m := p.byName[w.Count]
			n := 0
			for _, rec := range g.recs {
				if m.Match(rec) {
					n++
				}
			}
			entry.Counts[w.Count] = n
			entry.Score += w.Weight * float64(n)
		}
		entry.Score = Round(entry.Score, 2)
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Category < out[j].Category
	})
	if rk.Top > 0 && len(out) > rk.Top {
		out = out[:rk.Top]
	}
	if out == nil {
		out = []Ranked{}
	}
	return out
}
