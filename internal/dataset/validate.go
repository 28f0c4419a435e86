package dataset

import (
	"fmt"
	"strings"

	"reportcache/internal/config"
	"reportcache/internal/insight"
	"reportcache/internal/match"
	"reportcache/internal/stats"
)

// Validate lints s: unique fields, references to known fields, compilable
// conditions and report, insight thresholds that exist, and negation-aware
// substring pairs.
func Validate(s *Spec) []config.Issue {
	l := &linter{prefix: s.ID + "."}
	errf, warnf := l.errf, l.warnf

	if strings.TrimSpace(s.ID) == "" {
		errf("id", "dataset id must not be empty")
	}
	if len(s.Sources) == 0 {
		errf("sources", "at least one source file is required")
	}
	for i, src := range s.Sources {
		if src.File == "" {
			errf(fmt.Sprintf("sources[%d].file", i), "file must not be empty")
		}
		if src.Origin != "" && s.OriginField == "" {
			warnf(fmt.Sprintf("sources[%d].origin", i), "origin %q set but origin_field is empty", src.Origin)
		}
	}

	kinds := make(map[string]Kind, len(s.Fields))
	for i, f := range s.Fields {
		if _, dup := kinds[f.Name]; dup {
			errf(fmt.Sprintf("fields[%d]", i), "duplicate field %q", f.Name)
		}
		switch f.Kind {
		case Text, Upper, Title, Code, Date, Number:
		default:
			errf(fmt.Sprintf("fields[%d].kind", i), "unknown kind %q", f.Kind)
		}
		kinds[f.Name] = f.Kind
	}
	known := func(name string) bool { return s.HasField(name) }

	for h, f := range s.Headers {
		if _, ok := kinds[f]; !ok {
			errf("headers."+h, "maps to unknown field %q", f)
		}
	}
	for i, fb := range s.Fallbacks {
		if _, ok := kinds[fb.Field]; !ok {
			errf(fmt.Sprintf("fallbacks[%d]", i), "maps to unknown field %q", fb.Field)
		}
	}
	if s.PeriodFrom != "" && kinds[s.PeriodFrom] != Date {
		errf("period_from", "%q is not a date field", s.PeriodFrom)
	}
	for i, e := range s.Elapsed {
		if kinds[e.From] != Date || kinds[e.To] != Date {
			errf(fmt.Sprintf("elapsed[%d]", i), "from %q and to %q must be date fields", e.From, e.To)
		}
	}
	for i, p := range s.Presence {
		if _, ok := kinds[p.Of]; !ok {
			errf(fmt.Sprintf("presence[%d].of", i), "unknown field %q", p.Of)
		}
	}

	for i, c := range s.Classifiers {
		path := fmt.Sprintf("classifiers[%d]", i)
		if _, ok := kinds[c.Field]; !ok {
			errf(path+".field", "unknown field %q", c.Field)
		}
		conds := make([]match.Condition, 0, len(c.Rules))
		for j, r := range c.Rules {
			cond := r.When
			if cond.Field == "" {
				cond.Field = c.Field
			}
			if _, err := match.Compile(cond); err != nil {
				errf(fmt.Sprintf("%s.rules[%d]", path, j), "%v", err)
			}
			conds = append(conds, cond)
		}
		for _, msg := range negationClashes(conds) {
			errf(path+".rules", "%s", msg)
		}
	}

	for i, f := range s.Search {
		if !known(f) {
			errf(fmt.Sprintf("search[%d]", i), "unknown field %q", f)
		}
	}
	params := make(map[string]bool, len(s.Filters))
	for i, f := range s.Filters {
		path := fmt.Sprintf("filters[%d]", i)
		if params[f.Param] {
			errf(path, "duplicate filter parameter %q", f.Param)
		}
		params[f.Param] = true
		if !known(f.Field) {
			errf(path, "unknown field %q", f.Field)
		}
		switch f.Op {
		case Equal, Contains, Exact, NumberEqual:
		case DateFrom, DateTo:
			if kinds[f.Field] != Date {
				errf(path, "date bound on non-date field %q", f.Field)
			}
		default:
			errf(path, "unknown op %q", f.Op)
		}
	}
	if s.DefaultSort != "" && !known(s.DefaultSort) {
		errf("default_sort", "unknown field %q", s.DefaultSort)
	}
	for i, c := range s.Export {
		if !known(c.Field) {
			errf(fmt.Sprintf("export[%d]", i), "unknown field %q", c.Field)
		}
	}

	validateReport(s, l)
	validateInsights(s, l)
	return l.issues
}

type linter struct {
	prefix string
	issues []config.Issue
}

func (l *linter) errf(path, format string, args ...any) {
	l.issues = append(l.issues, config.Errorf(l.prefix+path, format, args...))
}

func (l *linter) warnf(path, format string, args ...any) {
	l.issues = append(l.issues, config.Warnf(l.prefix+path, format, args...))
}

func validateReport(s *Spec, l *linter) {
	errf := l.errf
	if _, err := stats.Compile(s.Report); err != nil {
		errf("report", "%v", err)
	}
	conds := make([]match.Condition, 0, len(s.Report.Counts))
	for i, c := range s.Report.Counts {
		if !s.HasField(c.When.Field) {
			errf(fmt.Sprintf("report.counts[%d]", i), "count %q on unknown field %q", c.Name, c.When.Field)
		}
		conds = append(conds, c.When)
	}
	for _, msg := range negationClashes(conds) {
		errf("report.counts", "%s", msg)
	}
	for i, b := range s.Report.Breakdowns {
		if !s.HasField(b.Field) {
			errf(fmt.Sprintf("report.breakdowns[%d]", i), "unknown field %q", b.Field)
		}
	}
	if ev := s.Report.Evolution; ev != nil && !s.HasField(ev.Field) {
		errf("report.evolution", "unknown field %q", ev.Field)
	}
	if rk := s.Report.Ranking; rk != nil && !s.HasField(rk.Field) {
		errf("report.ranking", "unknown field %q", rk.Field)
	}
}

func validateInsights(s *Spec, l *linter) {
	errf, warnf := l.errf, l.warnf
	for i, r := range s.Insights {
		path := fmt.Sprintf("insights[%d]", i)
		for _, key := range []string{r.Threshold, r.Low} {
			if key == "" {
				continue
			}
			if _, ok := s.Thresholds[key]; !ok {
				errf(path, "unknown threshold %q", key)
			}
		}
		switch r.Op {
		case insight.Below, insight.AtLeast, insight.Above, insight.AtMost:
			if r.Threshold == "" {
				errf(path, "op %q needs a threshold", r.Op)
			}
		case insight.Between:
			if r.Threshold == "" || r.Low == "" {
				errf(path, "op between needs low and threshold")
			}
		case insight.Exceeds:
			if r.Other == "" {
				errf(path, "op exceeds needs other")
			}
		case insight.Always:
		default:
			errf(path, "unknown op %q", r.Op)
		}
		if r.UnlessFiltered != "" {
			found := false
			for _, f := range s.Filters {
				found = found || f.Param == r.UnlessFiltered
			}
			if !found {
				warnf(path, "unless_filtered names unknown filter %q", r.UnlessFiltered)
			}
		}
	}
}

// negationClashes reports substring conditions whose positive text is
// embedded in a sibling's positive text on the same field without an Unless
// to tell them apart, such as EFECTIVA next to NO EFECTIVA.
func negationClashes(conds []match.Condition) []string {
	var out []string
	for i, a := range conds {
		if a.Contains == "" || a.Unless != "" {
			continue
		}
		pa := match.Fold(a.Contains)
		for j, b := range conds {
			if i == j || b.Contains == "" || b.Field != a.Field {
				continue
			}
			pb := match.Fold(b.Contains)
			if pa != pb && strings.Contains(pb, pa) {
				out = append(out, fmt.Sprintf("%q is embedded in %q on field %q; add unless: %q", a.Contains, b.Contains, a.Field, b.Contains))
			}
		}
	}
	return out
}
