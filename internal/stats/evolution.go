package stats

import (
	"fmt"
	"sort"
	"time"

	"reportcache/pkg/records"
)

var monthAbbr = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// MonthLabel renders t's month as a three-letter Spanish abbreviation and
// the year, e.g. "Mar 2025".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthAbbr[t.Month()-1], t.Year())
}

func dayLabel(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), monthAbbr[t.Month()-1])
}

type period struct {
	key   string
	label string
	recs  []records.Record
}

// periods buckets dated records by month or day and returns the buckets in
// chronological order. Records without a date in field are skipped.
func periods(recs []records.Record, field string, by Granularity) []period {
	idx := make(map[string]int)
	var out []period
	for _, rec := range recs {
		t, ok := rec.Time(field)
		if !ok {
			continue
		}
		var key, label string
		if by == Daily {
			key, label = t.Format("2006-01-02"), dayLabel(t)
		} else {
			key, label = t.Format("2006-01"), MonthLabel(t)
		}
		i, seen := idx[key]
		if !seen {
			i = len(out)
			idx[key] = i
			out = append(out, period{key: key, label: label})
		}
		out[i].recs = append(out[i].recs, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func (p *Plan) evolution(recs []records.Record, ev Evolution) []Point {
	window := ev.Window
	if window <= 0 {
		window = defaultWindow
	}
	ps := periods(recs, ev.Field, ev.By)
	if len(ps) > window {
		ps = ps[len(ps)-window:]
	}

	out := make([]Point, 0, len(ps))
	for _, per := range ps {
		all := p.tally(per.recs)
		pt := Point{
			Period: per.key,
			Label:  per.label,
			Total:  len(per.recs),
			Counts: make(map[string]int, len(ev.Counts)),
			Rates:  make(map[string]float64, len(ev.Rates)),
		}
		for _, c := range ev.Counts {
			pt.Counts[c] = all[c]
		}
		for _, name := range ev.Rates {
			r, _ := p.rate(name)
			pt.Rates[name] = p.rateFrom(r, all, len(per.recs))
		}
		out = append(out, pt)
	}
	return out
}
