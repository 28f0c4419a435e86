// Package insight turns an aggregation Bundle into short, severity-tagged
// observations by evaluating an ordered list of threshold rules.
//
// Generate is a pure function of its inputs. Rules never carry numbers of
// their own: each names threshold keys resolved against the dataset's
// threshold table, so targets can be tuned per deployment without touching
// the rule list.
package insight

import (
	"math"
	"strconv"
	"strings"

	"reportcache/internal/stats"
)

// Severity of an insight.
type Severity string

const (
	Warning Severity = "warning"
	Success Severity = "success"
	Info    Severity = "info"
)

// Insight is one generated observation.
type Insight struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// Op is the comparison a rule applies to its metric.
type Op string

const (
	Below   Op = "below"    // v < threshold
	AtLeast Op = "at_least" // v >= threshold
	Above   Op = "above"    // v > threshold
	AtMost  Op = "at_most"  // v <= threshold
	Between Op = "between"  // low < v <= threshold
	Exceeds Op = "exceeds"  // v > other * factor
	Always  Op = "always"   // whenever the metric is available
)

// Rule emits an insight when Metric satisfies Op.
//
// Metric references:
//
//	total               record count of the bundle
//	counts.<name>       a named count
//	rates.<name>        a named rate, unavailable when its denominator is 0
//	ratios.<name>       the same rate unrounded
//	numbers.<name>      a numeric summary, unavailable when absent
//	comparisons.<name>  the difference of a comparison, unavailable when
//	                    fewer than two slices exist
//	breakdowns.<name>   the count of the top bucket
//	ranking             the score of the top ranked category
//	spread.<name>       largest bucket count over smallest, needs two buckets
//
// Message placeholders: {value} {abs} {threshold} {low} {other} {category}
// {count} {previous} {actual} {total}.
type Rule struct {
	Metric    string   `json:"metric" yaml:"metric"`
	Op        Op       `json:"op" yaml:"op"`
	Threshold string   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Low       string   `json:"low,omitempty" yaml:"low,omitempty"`
	Other     string   `json:"other,omitempty" yaml:"other,omitempty"`
	Factor    float64  `json:"factor,omitempty" yaml:"factor,omitempty"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Title     string   `json:"title" yaml:"title"`
	Message   string   `json:"message" yaml:"message"`

	// UnlessFiltered skips the rule while the named filter is applied.
	UnlessFiltered string `json:"unless_filtered,omitempty" yaml:"unless_filtered,omitempty"`
}

// Generate evaluates rules in order against b. Rules whose metric or
// thresholds are unavailable are skipped, and an empty bundle yields none.
func Generate(b stats.Bundle, rules []Rule, thresholds map[string]float64) []Insight {
	out := make([]Insight, 0, len(rules))
	if b.Total == 0 {
		return out
	}
	for _, r := range rules {
		if r.UnlessFiltered != "" && filtered(b, r.UnlessFiltered) {
			continue
		}
		if in, ok := evaluate(b, r, thresholds); ok {
			out = append(out, in)
		}
	}
	return out
}

func evaluate(b stats.Bundle, r Rule, thresholds map[string]float64) (Insight, bool) {
	v, ok := Resolve(b, r.Metric)
	if !ok {
		return Insight{}, false
	}

	var (
		threshold, low, other float64
		fire                  bool
	)
	need := func(key string, dst *float64) bool {
		t, ok := thresholds[key]
		*dst = t
		return ok
	}

	switch r.Op {
	case Below, AtLeast, Above, AtMost:
		if !need(r.Threshold, &threshold) {
			return Insight{}, false
		}
		switch r.Op {
		case Below:
			fire = v.Value < threshold
		case AtLeast:
			fire = v.Value >= threshold
		case Above:
			fire = v.Value > threshold
		case AtMost:
			fire = v.Value <= threshold
		}
	case Between:
		if !need(r.Low, &low) || !need(r.Threshold, &threshold) {
			return Insight{}, false
		}
		fire = v.Value > low && v.Value <= threshold
	case Exceeds:
		o, ok := Resolve(b, r.Other)
		if !ok {
			return Insight{}, false
		}
		other = o.Value
		factor := r.Factor
		if factor == 0 {
			factor = 1
		}
		fire = v.Value > other*factor
	case Always:
		fire = true
	}
	if !fire {
		return Insight{}, false
	}

	repl := strings.NewReplacer(
		"{value}", num(v.Value),
		"{abs}", num(math.Abs(v.Value)),
		"{threshold}", num(threshold),
		"{low}", num(low),
		"{other}", num(other),
		"{category}", v.Category,
		"{count}", strconv.Itoa(v.Count),
		"{previous}", num(v.Previous),
		"{actual}", num(v.Actual),
		"{total}", strconv.Itoa(b.Total),
	)
	return Insight{
		Severity: r.Severity,
		Title:    repl.Replace(r.Title),
		Message:  repl.Replace(r.Message),
	}, true
}

func filtered(b stats.Bundle, param string) bool {
	for _, f := range b.Filters {
		if f == param {
			return true
		}
	}
	return false
}

// num renders v rounded to one decimal in its shortest form: 30.0 prints
// as "30", 66.7 as "66.7".
func num(v float64) string {
	return strconv.FormatFloat(stats.Round(v, 1), 'f', -1, 64)
}
