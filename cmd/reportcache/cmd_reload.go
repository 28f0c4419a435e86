package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reloadCmd = &cobra.Command{
	Use:   "reload <dataset>...",
	Short: "Rebuild datasets from their source files",
	Long:  "Rebuild the named datasets, or every dataset when none is named, and print their status.",
	RunE:  runReload,
}

func runReload(cmd *cobra.Command, args []string) error {
	ids := args
	if len(ids) == 0 {
		for _, in := range app.engine.Datasets() {
			ids = append(ids, in.ID)
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, id := range ids {
		st, err := app.engine.Reload(cmd.Context(), id)
		if err != nil {
			failed++
			app.log.Error("reload failed", zap.String("dataset", id), zap.Error(err))
			fmt.Fprintf(out, "%-10s FAILED  %v\n", id, err)
			continue
		}
		fmt.Fprintf(out, "%-10s %7d records  generation %s\n", id, st.Records, st.Generation)
		for _, m := range st.Missing {
			fmt.Fprintf(out, "%-10s missing %s\n", "", m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed to reload", failed, len(ids))
	}
	return nil
}
