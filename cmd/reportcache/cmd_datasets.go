package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reportcache/internal/format"
)

var datasetsFlags struct {
	json     bool
	markdown bool
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets, their source files and filter parameters",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func init() {
	f := datasetsCmd.Flags()
	f.BoolVar(&datasetsFlags.json, "json", false, "print JSON")
	f.BoolVar(&datasetsFlags.markdown, "markdown", false, "print a Markdown table")
}

func runDatasets(cmd *cobra.Command, _ []string) error {
	infos := app.engine.Datasets()
	out := cmd.OutOrStdout()
	if datasetsFlags.json {
		return writeJSON(out, infos)
	}

	t := format.NewTable(tableMode(datasetsFlags.markdown),
		format.Column{Header: "ID"},
		format.Column{Header: "Title"},
		format.Column{Header: "Sources", MaxWidth: 40},
		format.Column{Header: "Filters", MaxWidth: 50},
	)
	for _, in := range infos {
		t.Row(in.ID, in.Title, strings.Join(in.Sources, ", "), strings.Join(in.Filters, ", "))
	}
	fmt.Fprintln(out, t.String())
	return nil
}
