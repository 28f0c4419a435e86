package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reportcache/internal/catalog"
	"reportcache/internal/config"
	"reportcache/internal/dataset"
	"reportcache/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and the built-in dataset catalog",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	specs := catalog.Default()
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}

	issues := config.ValidateApp(app.cfg, ids, storage.ListKinds())
	for _, s := range specs {
		issues = append(issues, dataset.Validate(s)...)
	}

	out := cmd.OutOrStdout()
	for _, iss := range issues {
		fmt.Fprintf(out, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	source := rootFlags.config
	if source == "" {
		source = "defaults"
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %s", source)
	}
	fmt.Fprintf(out, "configuration is valid: %s\n", source)
	return nil
}
