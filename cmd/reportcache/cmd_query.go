package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reportcache/internal/format"
)

var queryFlags struct {
	criteriaFlags
	page     int
	limit    int
	fields   []string
	table    bool
	markdown bool
}

var queryCmd = &cobra.Command{
	Use:   "query <dataset>",
	Short: "List one page of a dataset's records",
	Long: "List one page of the records matching the filters and search term.\n" +
		"Output is the page as JSON unless --table or --markdown is given.",
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	queryFlags.bind(f, true)
	f.IntVar(&queryFlags.page, "page", 1, "page number, from 1")
	f.IntVar(&queryFlags.limit, "limit", 50, "page size (max 1000)")
	f.StringSliceVar(&queryFlags.fields, "fields", nil, "columns shown by --table (default: every schema field)")
	f.BoolVar(&queryFlags.table, "table", false, "print a terminal table")
	f.BoolVar(&queryFlags.markdown, "markdown", false, "print a Markdown table")
}

func runQuery(cmd *cobra.Command, args []string) error {
	c, err := queryFlags.criteria()
	if err != nil {
		return err
	}
	c.Page = queryFlags.page
	c.Limit = queryFlags.limit

	res, err := app.engine.Query(cmd.Context(), args[0], c)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !queryFlags.table && !queryFlags.markdown {
		return writeJSON(out, res)
	}

	fields := queryFlags.fields
	if len(fields) == 0 {
		fields = schemaOf(args[0])
	}
	fmt.Fprintln(out, format.Records(tableMode(queryFlags.markdown), fields, res.Items).String())
	fmt.Fprintf(out, "page %d/%d, %d records\n", res.Page, res.Pages, res.Total)
	return nil
}

func schemaOf(id string) []string {
	for _, in := range app.engine.Datasets() {
		if in.ID == id {
			return in.Fields
		}
	}
	return nil
}
