// Package normalize turns parsed source rows into canonical dataset records.
//
// A Normalizer is built once per dataset.Spec and runs the same transformer
// chain on every load: text cleanup, type coercion, derived period, elapsed
// and presence fields, and classification. Per-field failures become nil; no
// record is ever dropped.
package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"reportcache/internal/dataset"
	"reportcache/internal/match"
	pcsv "reportcache/internal/parser/csv"
	"reportcache/internal/transformer"
	"reportcache/internal/transformer/builtin"
	"reportcache/pkg/records"
)

// Normalizer applies one dataset's cleaning and derivation rules.
type Normalizer struct {
	spec        *dataset.Spec
	types       map[string]string
	derive      transformer.Chain
	classifiers []classifier
}

type classifier struct {
	def   dataset.Classifier
	rules []builtin.Rule
}

// New compiles the rules of spec. It fails when a classifier condition is
// invalid.
func New(spec *dataset.Spec) (*Normalizer, error) {
	n := &Normalizer{spec: spec, types: make(map[string]string, len(spec.Fields))}
	for _, f := range spec.Fields {
		n.types[f.Name] = string(f.Kind)
	}

	if spec.PeriodFrom != "" {
		n.derive = append(n.derive, builtin.Period{
			From:  spec.PeriodFrom,
			Into:  dataset.FieldPeriod,
			Month: dataset.FieldMonth,
			Year:  dataset.FieldYear,
		})
	}
	for _, e := range spec.Elapsed {
		n.derive = append(n.derive, builtin.Elapsed{Into: e.Into, From: e.From, To: e.To})
	}
	for _, p := range spec.Presence {
		n.derive = append(n.derive, builtin.Presence{Into: p.Into, Of: p.Of})
	}

	for _, c := range spec.Classifiers {
		cl := classifier{def: c}
		for _, r := range c.Rules {
			cond := r.When
			if cond.Field == "" {
				cond.Field = c.Field
			}
			m, err := match.Compile(cond)
			if err != nil {
				return nil, fmt.Errorf("dataset %s: classifier %s rule %s: %w", spec.ID, c.Into, r.Tag, err)
			}
			cl.rules = append(cl.rules, builtin.Rule{Tag: r.Tag, Match: m})
		}
		n.classifiers = append(n.classifiers, cl)
	}
	return n, nil
}

// ParserOptions returns the CSV options for one source of the dataset.
func (n *Normalizer) ParserOptions(src dataset.Source, log *zap.Logger) pcsv.Options {
	fb := make([]pcsv.Fallback, 0, len(n.spec.Fallbacks))
	for _, f := range n.spec.Fallbacks {
		fb = append(fb, pcsv.Fallback{Keyword: f.Keyword, Field: f.Field})
	}
	return pcsv.Options{
		HasHeader:    true,
		Comma:        src.Comma,
		TrimSpace:    true,
		HeaderMap:    n.spec.Headers,
		Fallbacks:    fb,
		DropUnmapped: true,
		Logger:       log,
	}
}

// Run normalizes recs in place and returns them with the number of
// unclassifiable values per classifier output field.
func (n *Normalizer) Run(recs []records.Record) ([]records.Record, map[string]int) {
	for _, r := range recs {
		for name := range n.types {
			if _, ok := r[name]; !ok {
				r[name] = nil
			}
		}
	}

	chain := transformer.Chain{
		builtin.Normalize{},
		builtin.Coerce{Types: n.types},
	}
	chain = append(chain, n.derive...)

	classify := make([]*builtin.Classify, 0, len(n.classifiers))
	for _, c := range n.classifiers {
		step := &builtin.Classify{
			Field:       c.def.Field,
			Into:        c.def.Into,
			Rules:       c.rules,
			EmptyTag:    c.def.EmptyTag,
			Passthrough: c.def.Passthrough,
		}
		classify = append(classify, step)
		chain = append(chain, step)
	}

	out := chain.Apply(recs)

	quality := make(map[string]int, len(classify))
	for _, c := range classify {
		quality[c.Into] = c.Unmatched
	}
	return out, quality
}
