// Package match implements the boolean business conditions evaluated over
// free-text fields: classification rules at normalization time and the named
// counts of the aggregation engine.
//
// Substring conditions are negation-aware. A value such as "NO EFECTIVA"
// embeds the positive substring "EFECTIVA", so a condition that counts
// effective records is written as
//
//	Condition{Field: "estado", Contains: "EFECTIVA", Unless: "NO EFECTIVA"}
//
// and a value matching Unless never satisfies the condition.
package match

import (
	"fmt"
	"strconv"
	"strings"

	"reportcache/pkg/records"
)

// Condition is a single predicate over one field of a record. Exactly one of
// Contains, Equals, Empty, Present, or Numeric selects the test; Unless only
// applies together with Contains or Equals.
//
// All text comparisons are case-insensitive.
type Condition struct {
	Field string `json:"field" yaml:"field"`

	// Contains matches when the value contains this substring.
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
	// Unless excludes values containing this substring.
	Unless string `json:"unless,omitempty" yaml:"unless,omitempty"`
	// Equals matches when the value equals any entry.
	Equals []string `json:"equals,omitempty" yaml:"equals,omitempty"`
	// Empty matches null or blank values.
	Empty bool `json:"empty,omitempty" yaml:"empty,omitempty"`
	// Present matches any non-blank value.
	Present bool `json:"present,omitempty" yaml:"present,omitempty"`
	// Numeric matches values that parse as a number.
	Numeric bool `json:"numeric,omitempty" yaml:"numeric,omitempty"`
}

// Matcher is a compiled Condition.
type Matcher struct {
	field    string
	contains string
	unless   string
	equals   map[string]struct{}
	empty    bool
	present  bool
	numeric  bool
}

// Compile validates c and returns a Matcher with upper-cased operands.
func Compile(c Condition) (*Matcher, error) {
	if strings.TrimSpace(c.Field) == "" {
		return nil, fmt.Errorf("match: condition without field")
	}
	modes := 0
	for _, on := range []bool{c.Contains != "", len(c.Equals) > 0, c.Empty, c.Present, c.Numeric} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return nil, fmt.Errorf("match: condition on %q must set exactly one of contains, equals, empty, present, numeric", c.Field)
	}
	if c.Unless != "" && c.Contains == "" && len(c.Equals) == 0 {
		return nil, fmt.Errorf("match: condition on %q sets unless without contains or equals", c.Field)
	}

	m := &Matcher{
		field:    c.Field,
		contains: fold(c.Contains),
		unless:   fold(c.Unless),
		empty:    c.Empty,
		present:  c.Present,
		numeric:  c.Numeric,
	}
	if len(c.Equals) > 0 {
		m.equals = make(map[string]struct{}, len(c.Equals))
		for _, e := range c.Equals {
			m.equals[fold(e)] = struct{}{}
		}
	}
	return m, nil
}

// MustCompile is Compile for conditions known to be valid at build time.
func MustCompile(c Condition) *Matcher {
	m, err := Compile(c)
	if err != nil {
		panic(err)
	}
	return m
}

// Field returns the field the matcher inspects.
func (m *Matcher) Field() string { return m.field }

// Match evaluates the condition against rec.
func (m *Matcher) Match(rec records.Record) bool {
	return m.MatchValue(rec[m.field])
}

// MatchValue evaluates the condition against a raw value.
func (m *Matcher) MatchValue(v any) bool {
	s := strings.TrimSpace(records.Format(v))
	switch {
	case m.empty:
		return s == ""
	case m.present:
		return s != ""
	case m.numeric:
		return isNumeric(v, s)
	}
	if s == "" {
		return false
	}
	u := fold(s)
	if m.unless != "" && strings.Contains(u, m.unless) {
		return false
	}
	if m.equals != nil {
		_, ok := m.equals[u]
		return ok
	}
	return strings.Contains(u, m.contains)
}

func isNumeric(v any, s string) bool {
	switch v.(type) {
	case float64, int, int64:
		return true
	}
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return err == nil
}

// Fold upper-cases s for case-insensitive comparison.
func Fold(s string) string { return fold(s) }

func fold(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
