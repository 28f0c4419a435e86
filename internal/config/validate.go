package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "metrics.backend",
// "nncc.report.rates[0].of"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Path     string        `json:"path"`
	Message  string        `json:"message"`
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errorf and Warnf build issues.
func Errorf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func Warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateApp performs static validation of a. knownDatasets lists the ids
// thresholds and windows may refer to; exportKinds lists the registered
// storage kinds.
func ValidateApp(a App, knownDatasets, exportKinds []string) []Issue {
	var issues []Issue

	if strings.TrimSpace(a.DataDir) == "" {
		issues = append(issues, Errorf("data_dir", "data_dir must not be empty"))
	}
	switch strings.ToLower(a.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, Errorf("log_level", "unknown log level %q", a.LogLevel))
	}

	issues = append(issues, validateMetrics(a.Metrics)...)
	issues = append(issues, validateExport(a.Export, exportKinds)...)

	known := make(map[string]bool, len(knownDatasets))
	for _, id := range knownDatasets {
		known[id] = true
	}
	for id := range a.Thresholds {
		if !known[id] {
			issues = append(issues, Warnf("thresholds."+id, "unknown dataset %q", id))
		}
	}
	for id, n := range a.Windows {
		if !known[id] {
			issues = append(issues, Warnf("windows."+id, "unknown dataset %q", id))
		}
		if n < 1 {
			issues = append(issues, Errorf("windows."+id, "window must be >= 1, got %d", n))
		}
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", BackendNone:
	case BackendPushgateway:
		if m.PushgatewayURL == "" {
			issues = append(issues, Errorf("metrics.pushgateway_url", "pushgateway backend requires pushgateway_url"))
		} else if u, err := url.Parse(m.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Errorf("metrics.pushgateway_url", "invalid url %q", m.PushgatewayURL))
		}
		if m.Job == "" {
			issues = append(issues, Warnf("metrics.job", "empty job; \"reportcache\" is used"))
		}
	case BackendDatadog:
		if m.Datadog.Addr == "" {
			issues = append(issues, Errorf("metrics.datadog.addr", "datadog backend requires addr"))
		}
		for i, tag := range m.Datadog.Tags {
			if !strings.Contains(tag, ":") {
				issues = append(issues, Warnf(fmt.Sprintf("metrics.datadog.tags[%d]", i), "tag %q is not key:value", tag))
			}
		}
	default:
		issues = append(issues, Errorf("metrics.backend", "unknown metrics backend %q", m.Backend))
	}
	return issues
}

func validateExport(e Export, kinds []string) []Issue {
	if e.Kind == "" {
		if e.DSN != "" {
			return []Issue{Warnf("export.dsn", "dsn set without export.kind")}
		}
		return nil
	}
	var issues []Issue
	found := false
	for _, k := range kinds {
		if k == e.Kind {
			found = true
		}
	}
	if !found {
		issues = append(issues, Errorf("export.kind", "unsupported storage kind %q (have %s)", e.Kind, strings.Join(kinds, ", ")))
	}
	if e.DSN == "" {
		issues = append(issues, Errorf("export.dsn", "export.kind %q requires a dsn", e.Kind))
	}
	if e.BatchSize < 0 {
		issues = append(issues, Errorf("export.batch_size", "batch_size must be >= 0"))
	}
	return issues
}
