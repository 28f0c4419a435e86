package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var valuesFlags struct {
	desc bool
	json bool
}

var valuesCmd = &cobra.Command{
	Use:   "values <dataset> <field>",
	Short: "List the distinct values of a field",
	Args:  cobra.ExactArgs(2),
	RunE:  runValues,
}

func init() {
	f := valuesCmd.Flags()
	f.BoolVar(&valuesFlags.desc, "desc", false, "sort descending")
	f.BoolVar(&valuesFlags.json, "json", false, "print JSON")
}

func runValues(cmd *cobra.Command, args []string) error {
	vals, err := app.engine.Values(cmd.Context(), args[0], args[1], valuesFlags.desc)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if valuesFlags.json {
		return writeJSON(out, vals)
	}
	for _, v := range vals {
		fmt.Fprintln(out, v)
	}
	return nil
}
