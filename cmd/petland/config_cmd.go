package main

import (
	"fmt"
	"log/slog"

	"github.com/BadgerOps/petland/internal/dbcheck"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect petland configuration. The config file is petland.yaml in the
working directory or ~/.config/petland/petland.yaml, unless --config is given.`,
		Example: `  petland config show
  petland config show --config ./petland.yaml`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration in YAML format, with defaults filled
in and command-line overrides applied. Database passwords are redacted.`,
		Example: `  petland config show
  petland config show --journal ./petland.db`,
		Args: cobra.NoArgs,
		RunE: configShowRun,
	}

	return cmd
}

func configShowRun(cmd *cobra.Command, args []string) error {
	log := slog.Default()

	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	log.Debug("showing configuration")

	shown := *globalCfg
	shown.Database.URL = dbcheck.Redact(shown.Database.URL)

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "======================")
	fmt.Fprintln(out, string(data))

	return nil
}
