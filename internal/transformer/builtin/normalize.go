package builtin

import (
	"strings"

	"reportcache/pkg/records"
)

// nbsp covers the non-breaking space both as a rune and in its common
// mis-decoded Latin-1 form.
var nbsp = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

// Normalize trims every string value and replaces non-breaking spaces. Values
// that become empty are set to nil.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(nbsp.Replace(s))
				if s == "" {
					r[k] = nil
					continue
				}
				r[k] = s
			}
		}
	}
	return in
}
