package query

import (
	"sort"
	"strings"
	"time"

	"reportcache/internal/dataset"
	"reportcache/pkg/records"
)

// SortField resolves the sort field and direction for c. ok is false when the
// field is not part of the dataset schema, in which case no sort applies.
func SortField(spec *dataset.Spec, c Criteria) (field string, desc bool, ok bool) {
	field = strings.TrimSpace(c.SortBy)
	order := strings.ToLower(strings.TrimSpace(c.Order))
	if field == "" {
		field = spec.DefaultSort
		if order == "" {
			order = strings.ToLower(spec.DefaultOrder)
		}
	}
	if field == "" || !spec.HasField(field) {
		return "", false, false
	}
	return field, order == Desc, true
}

// Sort orders recs in place by field. The sort is stable and null values go
// last in both directions.
func Sort(recs []records.Record, field string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		an, bn := a.IsNull(field), b.IsNull(field)
		if an || bn {
			return !an && bn
		}
		c := compare(a[field], b[field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compare orders two non-null values. Values of the same kind compare
// naturally; mixed kinds fall back to their text form.
func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(strings.ToUpper(x), strings.ToUpper(y))
		}
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(records.Format(a), records.Format(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
