package builtin

import (
	"strings"

	"reportcache/internal/match"
	"reportcache/pkg/records"
)

// Unclassifiable tags values that no rule recognised.
const Unclassifiable = "UNCLASSIFIABLE"

// Rule assigns Tag to values its matcher accepts.
type Rule struct {
	Tag   string
	Match *match.Matcher
}

// Classify maps the free text of Field into an enumerated tag stored in Into.
// Rules are tried in order and the first that matches wins. Blank values get
// EmptyTag, or nil when EmptyTag is "". Anything else gets Unclassifiable and
// is counted in Unmatched, unless Passthrough is set, in which case the
// value is copied as is.
type Classify struct {
	Field       string
	Into        string
	Rules       []Rule
	EmptyTag    string
	Passthrough bool

	Unmatched int
}

func (c *Classify) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		r[c.Into] = c.tag(r[c.Field])
	}
	return in
}

func (c *Classify) tag(v any) any {
	if strings.TrimSpace(records.Format(v)) == "" {
		if c.EmptyTag == "" {
			return nil
		}
		return c.EmptyTag
	}
	for _, rule := range c.Rules {
		if rule.Match.MatchValue(v) {
			return rule.Tag
		}
	}
	if c.Passthrough {
		return v
	}
	c.Unmatched++
	return Unclassifiable
}
