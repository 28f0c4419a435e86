package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reportcache/internal/export"
	"reportcache/internal/format"
	"reportcache/internal/storage"
)

var exportFlags struct {
	criteriaFlags
	out      string
	markdown bool
	sink     string
	dsn      string
	table    string
	replace  bool
}

var exportCmd = &cobra.Command{
	Use:   "export <dataset>",
	Short: "Export the filtered records as CSV, Markdown, or into a SQL table",
	Long: "Export every record matching the filters, sorted, with the dataset's export columns.\n" +
		"Without --sink the rows are written as CSV to --out (default stdout).\n" +
		"With --sink the rows are bulk-copied into a table of that storage kind;\n" +
		"--sink, --dsn and --table default to the export section of the config.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	exportFlags.bind(f, true)
	f.StringVarP(&exportFlags.out, "out", "o", "", "output file (default stdout)")
	f.BoolVar(&exportFlags.markdown, "markdown", false, "write a Markdown table instead of CSV")
	f.StringVar(&exportFlags.sink, "sink", "", "storage kind to export into (sqlite, postgres, mssql)")
	f.StringVar(&exportFlags.dsn, "dsn", "", "connection string of the sink")
	f.StringVar(&exportFlags.table, "table", "", "destination table (default export_<dataset>)")
	f.BoolVar(&exportFlags.replace, "replace", false, "empty the destination table before loading")
}

func runExport(cmd *cobra.Command, args []string) error {
	id := args[0]
	c, err := exportFlags.criteria()
	if err != nil {
		return err
	}
	t, err := app.engine.Export(cmd.Context(), id, c)
	if err != nil {
		return err
	}

	kind := firstNonEmpty(exportFlags.sink, app.cfg.Export.Kind)
	if kind != "" && exportFlags.out == "" && !exportFlags.markdown {
		return exportToSink(cmd, kind, t)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportFlags.out != "" {
		f, err := os.Create(exportFlags.out)
		if err != nil {
			return fmt.Errorf("export %s: %w", id, err)
		}
		defer f.Close()
		w = f
	}
	if exportFlags.markdown {
		_, err = fmt.Fprintln(w, format.Export(format.Markdown, t))
	} else {
		err = export.WriteCSV(w, t)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}
	app.log.Info("export written",
		zap.String("dataset", id),
		zap.Int("rows", len(t.Rows)),
		zap.String("out", firstNonEmpty(exportFlags.out, "stdout")),
	)
	return nil
}

func exportToSink(cmd *cobra.Command, kind string, t export.Table) error {
	dsn := firstNonEmpty(exportFlags.dsn, app.cfg.Export.DSN)
	if dsn == "" {
		return fmt.Errorf("export %s: sink %q requires --dsn", t.Name, kind)
	}
	table := firstNonEmpty(exportFlags.table, app.cfg.Export.Table, "export_"+t.Name)

	repo, err := storage.New(cmd.Context(), storage.Config{
		Kind:    kind,
		DSN:     dsn,
		Table:   table,
		Columns: t.Fields(),
	})
	if err != nil {
		return fmt.Errorf("export %s: %w", t.Name, err)
	}
	defer repo.Close()

	n, err := export.ToRepository(cmd.Context(), repo, t, export.Sink{
		Kind:      kind,
		Table:     table,
		BatchSize: app.cfg.Export.BatchSize,
		Replace:   exportFlags.replace || app.cfg.Export.Replace,
	}, app.log)
	if err != nil {
		return err
	}
	app.log.Info("export loaded",
		zap.String("dataset", t.Name),
		zap.String("sink", kind),
		zap.String("table", table),
		zap.Int64("rows", n),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s %s\n", n, kind, table)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
