// Package catalog holds the built-in dataset pipelines: new-connection
// inspections (nncc), loss-control quality (calidad) with its requested
// order population, meter-reading audits (lecturas), cut and reconnection
// orders (corte), and telecom pole surveys (teleco).
//
// Every pipeline is plain data. Column names, classification vocabularies,
// and thresholds live here so the engine never inlines a business literal.
package catalog

import (
	"reportcache/internal/dataset"
	"reportcache/internal/export"
	"reportcache/internal/insight"
	"reportcache/internal/match"
	"reportcache/internal/stats"
)

// Default returns fresh copies of every built-in spec, in display order.
func Default() []*dataset.Spec {
	return []*dataset.Spec{
		NNCC(),
		Calidad(),
		CalidadSolicitudes(),
		Lecturas(),
		Corte(),
		Teleco(),
	}
}

// headers builds a header map from alternating raw header and field names.
func headers(pairs ...string) map[string]string {
	if len(pairs)%2 != 0 {
		panic("catalog: headers needs an even number of arguments")
	}
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out[pairs[i]] = pairs[i+1]
	}
	return out
}

// fields concatenates groups built with of.
func fields(groups ...[]dataset.Field) []dataset.Field {
	var out []dataset.Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func of(kind dataset.Kind, names ...string) []dataset.Field {
	out := make([]dataset.Field, len(names))
	for i, n := range names {
		out[i] = dataset.Field{Name: n, Kind: kind}
	}
	return out
}

// columns builds export columns from alternating field and header names.
// Widths come from widths when present.
func columns(widths map[string]int, pairs ...string) []export.Column {
	out := make([]export.Column, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, export.Column{Field: pairs[i], Header: pairs[i+1], Width: widths[pairs[i]]})
	}
	return out
}

func filter(param, field string, op dataset.FilterOp) dataset.Filter {
	return dataset.Filter{Param: param, Field: field, Op: op}
}

func count(name string, when match.Condition) stats.Count {
	return stats.Count{Name: name, When: when}
}

func contains(field, s string) match.Condition {
	return match.Condition{Field: field, Contains: s}
}

func containsUnless(field, s, unless string) match.Condition {
	return match.Condition{Field: field, Contains: s, Unless: unless}
}

func equals(field string, vals ...string) match.Condition {
	return match.Condition{Field: field, Equals: vals}
}

func present(field string) match.Condition {
	return match.Condition{Field: field, Present: true}
}

func empty(field string) match.Condition {
	return match.Condition{Field: field, Empty: true}
}

func numeric(field string) match.Condition {
	return match.Condition{Field: field, Numeric: true}
}

// rule builds a classifier rule whose condition applies to the classifier's
// own field.
func rule(tag string, when match.Condition) dataset.Rule {
	return dataset.Rule{Tag: tag, When: when}
}

// all is a count condition every record satisfies: the synthetic id is
// always set.
func all() match.Condition { return present(dataset.FieldID) }

// periodFilters accepts a month number and a year against the derived
// period fields.
func periodFilters() []dataset.Filter {
	return []dataset.Filter{
		filter("mes", dataset.FieldMonth, dataset.NumberEqual),
		filter("anio", dataset.FieldYear, dataset.NumberEqual),
	}
}

func warning(metric string, op insight.Op, threshold, title, message string) insight.Rule {
	return note(insight.Warning, metric, op, threshold, title, message)
}

func success(metric string, op insight.Op, threshold, title, message string) insight.Rule {
	return note(insight.Success, metric, op, threshold, title, message)
}

func info(metric string, op insight.Op, threshold, title, message string) insight.Rule {
	return note(insight.Info, metric, op, threshold, title, message)
}

func note(sev insight.Severity, metric string, op insight.Op, threshold, title, message string) insight.Rule {
	return insight.Rule{Metric: metric, Op: op, Threshold: threshold, Severity: sev, Title: title, Message: message}
}

// between turns r into a range rule: low < value <= r.Threshold.
func between(r insight.Rule, low string) insight.Rule {
	r.Op = insight.Between
	r.Low = low
	return r
}

// exceeds turns r into a relative rule: value > other * factor.
func exceeds(r insight.Rule, other string, factor float64) insight.Rule {
	r.Op = insight.Exceeds
	r.Other = other
	r.Factor = factor
	return r
}

// unlessFiltered suppresses r while the filter param is applied.
func unlessFiltered(r insight.Rule, param string) insight.Rule {
	r.UnlessFiltered = param
	return r
}
