package builtin

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reportcache/pkg/records"
)

// Coerce converts string values to typed values per field.
//
// Supported types:
//
//	text, string  trimmed text
//	upper         trimmed, upper-cased
//	title         trimmed, title-cased with Spanish rules
//	code          trimmed, trailing ".0" removed
//	date          time.Time via Layouts (DateLayouts when empty)
//	number        float64, "." or "," decimal separator
//	int, bool     strconv parsing
//
// A value that fails to parse as date, number, int, or bool becomes nil.
type Coerce struct {
	Types   map[string]string // field -> type
	Layouts []string
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	title := cases.Title(language.Spanish)
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			s = strings.TrimSpace(s)
			switch typ {
			case "upper":
				r[field] = strings.ToUpper(s)
			case "title":
				r[field] = title.String(strings.ToLower(s))
			case "code":
				r[field] = strings.TrimSuffix(s, ".0")
			case "date":
				if t, ok := ParseDate(s, c.Layouts); ok {
					r[field] = t
				} else {
					r[field] = nil
				}
			case "number":
				if f, ok := ParseNumber(s); ok {
					r[field] = f
				} else {
					r[field] = nil
				}
			case "int":
				if i, err := strconv.Atoi(s); err == nil {
					r[field] = i
				} else {
					r[field] = nil
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				} else {
					r[field] = nil
				}
			default:
				r[field] = s
			}
		}
	}
	return in
}

// dayStart truncates t to midnight UTC.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
