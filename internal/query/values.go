package query

import (
	"sort"
	"strings"

	"reportcache/pkg/records"
)

// Distinct returns the distinct non-blank rendered values of field, sorted
// ascending or descending. It feeds filter drop-downs.
func Distinct(recs []records.Record, field string, desc bool) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range recs {
		s, ok := r.Text(field)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	} else {
		sort.Strings(out)
	}
	return out
}
