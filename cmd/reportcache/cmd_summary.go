package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reportcache/internal/engine"
	"reportcache/internal/format"
)

var summaryFlags struct {
	json     bool
	markdown bool
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the unfiltered totals and rates of every dataset",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.BoolVar(&summaryFlags.json, "json", false, "print JSON")
	f.BoolVar(&summaryFlags.markdown, "markdown", false, "print a Markdown table")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	lines := app.engine.Summary(cmd.Context())
	out := cmd.OutOrStdout()
	if summaryFlags.json {
		return writeJSON(out, lines)
	}

	t := format.NewTable(tableMode(summaryFlags.markdown),
		format.Column{Header: "ID"},
		format.Column{Header: "Title"},
		format.Column{Header: "Total", Right: true},
		format.Column{Header: "Rates", MaxWidth: 60},
		format.Column{Header: "Loaded"},
		format.Column{Header: "Status", MaxWidth: 40},
	)
	total := 0
	for _, s := range lines {
		total += s.Total
		t.Row(s.ID, s.Title, s.Total, rateList(s.Rates), s.LoadedAt.Format("2006-01-02 15:04"), summaryStatus(s))
	}
	t.Footer("", "TOTAL", total, "", "", "")
	fmt.Fprintln(out, t.String())
	return nil
}

func rateList(rates map[string]float64) string {
	names := make([]string, 0, len(rates))
	for k := range rates {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + strconv.FormatFloat(rates[k], 'f', -1, 64) + "%"
	}
	return strings.Join(parts, " ")
}

func summaryStatus(s engine.Summary) string {
	switch {
	case s.Err != "":
		return s.Err
	case len(s.Missing) > 0:
		return "missing " + strings.Join(s.Missing, ", ")
	}
	return "ok"
}
