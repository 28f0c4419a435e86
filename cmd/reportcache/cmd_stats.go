package main

import (
	"github.com/spf13/cobra"
)

var statsFlags struct {
	criteriaFlags
}

var statsCmd = &cobra.Command{
	Use:   "stats <dataset>",
	Short: "Compute statistics and insights over the filtered records",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsFlags.bind(statsCmd.Flags(), false)
}

func runStats(cmd *cobra.Command, args []string) error {
	c, err := statsFlags.criteria()
	if err != nil {
		return err
	}
	rep, err := app.engine.Stats(cmd.Context(), args[0], c)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), rep)
}
