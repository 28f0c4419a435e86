// Package records defines the row representation shared by the parser,
// normalization, cache, query, and aggregation layers.
//
// A Record maps a canonical field name to a scalar value. Values produced by
// the normalizer are one of:
//
//   - string
//   - float64 (numbers)
//   - int (period components, synthetic ids)
//   - time.Time (dates)
//   - bool (presence flags)
//   - nil (missing or unparsable)
//
// Records are built and mutated only while a dataset is being normalized.
// Once published in a dataset snapshot they must be treated as read-only;
// callers that need to hand values out use Project, which copies.
package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by canonical field name.
type Record map[string]any

// DateLayout is the layout used when dates leave the engine as text.
const DateLayout = "2006-01-02"

// Text returns the value of field rendered as a string. ok is false when the
// field is absent, nil, or renders to an empty string.
func (r Record) Text(field string) (string, bool) {
	s := Format(r[field])
	if s == "" {
		return "", false
	}
	return s, true
}

// Time returns the field as a time.Time when it holds one.
func (r Record) Time(field string) (time.Time, bool) {
	t, ok := r[field].(time.Time)
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Number returns the field as a float64 when it holds a numeric value.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// IsNull reports whether field is absent, nil, or a blank string.
func (r Record) IsNull(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// Project copies the listed fields into a new Record, rendering dates with
// DateLayout. Fields missing from r are emitted as nil so every projection
// carries the same keys.
func (r Record) Project(fields []string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		v := r[f]
		if t, ok := v.(time.Time); ok {
			if t.IsZero() {
				v = nil
			} else {
				v = t.Format(DateLayout)
			}
		}
		out[f] = v
	}
	return out
}

// Format renders a scalar the way it is compared and exported: dates as
// DateLayout, numbers in their shortest form, nil as "".
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
