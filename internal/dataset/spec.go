// Package dataset defines the declarative description of a dataset pipeline
// (Spec) and the immutable snapshot the cache publishes for it (Dataset).
//
// A Spec carries everything that differs between pipelines: where the source
// files live, how raw headers map to canonical fields, how values are cleaned
// and classified, which fields are searchable and filterable, the aggregation
// report, and the insight rules with their thresholds. The normalizer, cache,
// query, stats, and insight packages are all driven by it.
package dataset

import (
	"reportcache/internal/export"
	"reportcache/internal/insight"
	"reportcache/internal/match"
	"reportcache/internal/stats"
)

// Kind selects how a raw field value is cleaned and typed.
type Kind string

const (
	// Text values are trimmed.
	Text Kind = "text"
	// Upper values are trimmed and upper-cased for stable comparison.
	Upper Kind = "upper"
	// Title values are trimmed and title-cased (person names).
	Title Kind = "title"
	// Code values are trimmed and lose a trailing ".0" left by spreadsheet
	// exports of numeric identifiers.
	Code Kind = "code"
	// Date values are parsed into time.Time; unparsable values become nil.
	Date Kind = "date"
	// Number values are parsed into float64; unparsable values become nil.
	Number Kind = "number"
)

// Unclassifiable tags values that no classifier rule recognised.
const Unclassifiable = "UNCLASSIFIABLE"

// Field names the normalizer writes on every dataset: the synthetic id and,
// when PeriodFrom is set, the period key and its components.
const (
	FieldID     = "id"
	FieldPeriod = "periodo"
	FieldMonth  = "mes"
	FieldYear   = "anio"
)

// Field is a canonical field and its cleaning rule.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Source is one input file. Origin, when set, is written into the dataset's
// OriginField for every record read from the file.
type Source struct {
	File   string `json:"file" yaml:"file"`
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Comma  rune   `json:"comma,omitempty" yaml:"comma,omitempty"`
}

// Fallback maps the first unmapped header containing Keyword to Field.
type Fallback struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Field   string `json:"field" yaml:"field"`
}

// Elapsed derives Into as the number of whole days from From to To.
type Elapsed struct {
	Into string `json:"into" yaml:"into"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Presence derives Into as a boolean: whether Of holds a value.
type Presence struct {
	Into string `json:"into" yaml:"into"`
	Of   string `json:"of" yaml:"of"`
}

// Rule assigns Tag when its condition holds on the classifier's field.
type Rule struct {
	Tag  string          `json:"tag" yaml:"tag"`
	When match.Condition `json:"when" yaml:"when"`
}

// Classifier maps the free text of Field into an enumerated tag stored in
// Into. Rules are tried in order. Empty values receive EmptyTag (nil when
// EmptyTag is ""); values no rule accepts receive Unclassifiable, or their
// own text when Passthrough is set.
type Classifier struct {
	Field       string `json:"field" yaml:"field"`
	Into        string `json:"into" yaml:"into"`
	Rules       []Rule `json:"rules" yaml:"rules"`
	EmptyTag    string `json:"empty_tag,omitempty" yaml:"empty_tag,omitempty"`
	Passthrough bool   `json:"passthrough,omitempty" yaml:"passthrough,omitempty"`
}

// FilterOp selects how a filter parameter is applied to its field.
type FilterOp string

const (
	// Equal compares case-insensitively.
	Equal FilterOp = "eq"
	// Contains is a case-insensitive substring test.
	Contains FilterOp = "contains"
	// Exact compares the rendered value byte for byte.
	Exact FilterOp = "exact"
	// NumberEqual parses the parameter as a number.
	NumberEqual FilterOp = "number"
	// DateFrom is an inclusive lower date bound.
	DateFrom FilterOp = "from"
	// DateTo is an inclusive upper date bound.
	DateTo FilterOp = "to"
)

// Filter binds a query parameter name to a predicate over Field.
type Filter struct {
	Param string   `json:"param" yaml:"param"`
	Field string   `json:"field" yaml:"field"`
	Op    FilterOp `json:"op" yaml:"op"`
}

// Spec is the declarative configuration of one dataset pipeline.
type Spec struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`

	Sources     []Source `json:"sources" yaml:"sources"`
	OriginField string   `json:"origin_field,omitempty" yaml:"origin_field,omitempty"`

	// Headers maps source header text to canonical field names. Keys are
	// compared case- and accent-insensitively.
	Headers   map[string]string `json:"headers" yaml:"headers"`
	Fallbacks []Fallback        `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	Fields    []Field           `json:"fields" yaml:"fields"`

	// PeriodFrom names the date field that feeds periodo, mes and anio.
	PeriodFrom  string       `json:"period_from,omitempty" yaml:"period_from,omitempty"`
	Elapsed     []Elapsed    `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Presence    []Presence   `json:"presence,omitempty" yaml:"presence,omitempty"`
	Classifiers []Classifier `json:"classifiers,omitempty" yaml:"classifiers,omitempty"`

	Search       []string `json:"search" yaml:"search"`
	Filters      []Filter `json:"filters" yaml:"filters"`
	DefaultSort  string   `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	DefaultOrder string   `json:"default_order,omitempty" yaml:"default_order,omitempty"`

	Export     []export.Column    `json:"export" yaml:"export"`
	Report     stats.Report       `json:"report" yaml:"report"`
	Insights   []insight.Rule     `json:"insights" yaml:"insights"`
	Thresholds map[string]float64 `json:"thresholds" yaml:"thresholds"`
}

// Schema returns the ordered canonical field list of records produced for s:
// the synthetic id, the configured fields, the origin field, and every
// derived field.
func (s *Spec) Schema() []string {
	out := make([]string, 0, len(s.Fields)+8)
	seen := make(map[string]struct{}, cap(out))
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	add(FieldID)
	for _, f := range s.Fields {
		add(f.Name)
	}
	add(s.OriginField)
	if s.PeriodFrom != "" {
		add(FieldPeriod)
		add(FieldMonth)
		add(FieldYear)
	}
	for _, e := range s.Elapsed {
		add(e.Into)
	}
	for _, p := range s.Presence {
		add(p.Into)
	}
	for _, c := range s.Classifiers {
		add(c.Into)
	}
	return out
}

// HasField reports whether name is part of the schema.
func (s *Spec) HasField(name string) bool {
	for _, f := range s.Schema() {
		if f == name {
			return true
		}
	}
	return false
}

// FilterParams returns the parameter names accepted by the dataset.
func (s *Spec) FilterParams() []string {
	out := make([]string, 0, len(s.Filters))
	for _, f := range s.Filters {
		out = append(out, f.Param)
	}
	return out
}
