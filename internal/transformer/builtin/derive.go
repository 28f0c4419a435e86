package builtin

import (
	"fmt"

	"reportcache/pkg/records"
)

// Period derives a "YYYY-MM" key and its month and year components from the
// date in From. Records without a date get nil in all three fields.
type Period struct {
	From  string
	Into  string
	Month string
	Year  string
}

func (p Period) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		t, ok := r.Time(p.From)
		if !ok {
			r[p.Into], r[p.Month], r[p.Year] = nil, nil, nil
			continue
		}
		r[p.Into] = fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
		r[p.Month] = int(t.Month())
		r[p.Year] = t.Year()
	}
	return in
}

// Elapsed derives the number of whole calendar days from From to To. The
// result is nil when either date is missing; it may be negative when the
// source dates are inverted.
type Elapsed struct {
	Into, From, To string
}

func (e Elapsed) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		from, ok1 := r.Time(e.From)
		to, ok2 := r.Time(e.To)
		if !ok1 || !ok2 {
			r[e.Into] = nil
			continue
		}
		r[e.Into] = float64(int(dayStart(to).Sub(dayStart(from)).Hours() / 24))
	}
	return in
}

// Presence derives a boolean telling whether Of holds a non-blank value.
type Presence struct {
	Into, Of string
}

func (p Presence) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		r[p.Into] = !r.IsNull(p.Of)
	}
	return in
}
