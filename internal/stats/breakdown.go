package stats

import (
	"sort"
	"strings"

	"reportcache/pkg/records"
)

type group struct {
	category string
	recs     []records.Record
}

// groupBy partitions recs by the rendered, trimmed value of field. Null and
// blank values are left out.
func groupBy(recs []records.Record, field string) []group {
	idx := make(map[string]int)
	var out []group
	for _, rec := range recs {
		cat := strings.TrimSpace(records.Format(rec[field]))
		if cat == "" {
			continue
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, group{category: cat})
		}
		out[i].recs = append(out[i].recs, rec)
	}
	return out
}

func (p *Plan) breakdown(recs []records.Record, bd Breakdown) []Bucket {
	groups := groupBy(recs, bd.Field)
	out := make([]Bucket, 0, len(groups))
	for _, g := range groups {
		bk := Bucket{Category: g.category, Count: len(g.recs)}
		if bd.Rate != "" {
			m := p.byName[bd.Rate]
			hit := 0
			for _, rec := range g.recs {
				if m.Match(rec) {
					hit++
				}
			}
			r := Percent(hit, len(g.recs))
			bk.Rate = &r
		}
		if bd.Sum != "" {
			var s float64
			for _, rec := range g.recs {
				if v, ok := rec.Number(bd.Sum); ok {
					s += v
				}
			}
			s = Round(s, 2)
			bk.Sum = &s
		}
		out = append(out, bk)
	}
	sortBuckets(out)
	if bd.Top > 0 && len(out) > bd.Top {
		out = out[:bd.Top]
	}
	return out
}

// sortBuckets orders by descending count; ties fall back to the category so
// the output is deterministic.
func sortBuckets(b []Bucket) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Category < b[j].Category
	})
}
