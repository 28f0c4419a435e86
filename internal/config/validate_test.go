package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

var (
	datasets = []string{"nncc", "calidad", "lecturas", "corte", "teleco"}
	kinds    = []string{"mssql", "postgres", "sqlite"}
)

/*
TestValidateApp_DefaultIsClean verifies that the default configuration
produces no issues.
*/
func TestValidateApp_DefaultIsClean(t *testing.T) {
	if issues := ValidateApp(Default(), datasets, kinds); len(issues) != 0 {
		t.Fatalf("Default() issues = %+v", issues)
	}
}

func TestValidateApp_Findings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*App)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"empty data dir", func(a *App) { a.DataDir = " " }, SeverityError, "data_dir", "must not be empty"},
		{"bad log level", func(a *App) { a.LogLevel = "loud" }, SeverityError, "log_level", "unknown log level"},
		{"unknown backend", func(a *App) { a.Metrics.Backend = "statsd" }, SeverityError, "metrics.backend", "unknown metrics backend"},
		{"pushgateway without url", func(a *App) { a.Metrics.Backend = BackendPushgateway }, SeverityError, "metrics.pushgateway_url", "requires"},
		{"pushgateway bad url", func(a *App) {
			a.Metrics.Backend = BackendPushgateway
			a.Metrics.PushgatewayURL = "pg:9091/x"
		}, SeverityError, "metrics.pushgateway_url", "invalid url"},
		{"datadog without addr", func(a *App) { a.Metrics.Backend = BackendDatadog }, SeverityError, "metrics.datadog.addr", "requires addr"},
		{"datadog bad tag", func(a *App) {
			a.Metrics.Backend = BackendDatadog
			a.Metrics.Datadog = Datadog{Addr: "x:1", Tags: []string{"prod"}}
		}, SeverityWarning, "metrics.datadog.tags[0]", "key:value"},
		{"unsupported export kind", func(a *App) { a.Export = Export{Kind: "oracle", DSN: "x"} }, SeverityError, "export.kind", "unsupported storage kind"},
		{"export without dsn", func(a *App) { a.Export = Export{Kind: "sqlite"} }, SeverityError, "export.dsn", "requires a dsn"},
		{"unknown threshold dataset", func(a *App) {
			a.Thresholds = map[string]map[string]float64{"ventas": {"x": 1}}
		}, SeverityWarning, "thresholds.ventas", "unknown dataset"},
		{"zero window", func(a *App) { a.Windows = map[string]int{"nncc": 0} }, SeverityError, "windows.nncc", "window must be >= 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Default()
			tc.mutate(&a)
			issues := ValidateApp(a, datasets, kinds)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("missing %s at %s (%q); got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestIssueError(t *testing.T) {
	got := Errorf("export.dsn", "need %s", "dsn").Error()
	if got != "error at export.dsn: need dsn" {
		t.Fatalf("Error() = %q", got)
	}
	if !HasErrors([]Issue{Warnf("a", "b"), Errorf("c", "d")}) || HasErrors([]Issue{Warnf("a", "b")}) {
		t.Fatalf("HasErrors mismatch")
	}
}
