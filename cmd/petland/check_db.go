package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BadgerOps/petland/internal/config"
	"github.com/BadgerOps/petland/internal/dbcheck"
	"github.com/BadgerOps/petland/internal/store"
	"github.com/spf13/cobra"
)

var (
	checkDatabaseURL string
	checkEnvFiles    []string
	checkTimeout     time.Duration
)

// errCheckFailed is returned after the console report has explained the failure
var errCheckFailed = errors.New("database check failed")

func newCheckDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-db",
		Short: "Verify database connectivity and list tables",
		Long: `Connect to the database named by DATABASE_URL, print the server version
and list the tables of the default schema.

The connection string is taken from --database-url, then the DATABASE_URL
environment variable, then the env files (default .env), then database.url
in the config file. A failed table listing is reported but does not fail
the command; an unreachable database does.`,
		Example: `  petland check-db
  petland check-db --env-file backend/.env
  petland check-db --database-url sqlite:///petland.db --timeout 5s`,
		Args: cobra.NoArgs,
		RunE: checkDBRun,
	}

	cmd.Flags().StringVar(&checkDatabaseURL, "database-url", "", "database URL (overrides DATABASE_URL)")
	cmd.Flags().StringSliceVar(&checkEnvFiles, "env-file", nil, "dotenv files to read DATABASE_URL from (default from config: .env)")
	cmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "bound each database round-trip (0 means no timeout)")

	return cmd
}

func checkDBRun(cmd *cobra.Command, args []string) error {
	log := slog.Default()

	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	if cmd.Flags().Changed("env-file") {
		globalCfg.Database.EnvFiles = checkEnvFiles
	}

	url, source, err := globalCfg.ResolveDatabaseURL(checkDatabaseURL, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", config.DatabaseURLEnv, err)
	}
	if source != "" {
		log.Debug("database url resolved", "source", source, "url", dbcheck.Redact(url))
	}

	timeout := checkTimeout
	if !cmd.Flags().Changed("timeout") {
		timeout, err = globalCfg.Database.ParsedTimeout()
		if err != nil {
			return err
		}
	}

	checker := dbcheck.NewChecker(nil, log)
	report := checker.Run(cmd.Context(), dbcheck.ConnectionConfig{URL: url, Timeout: timeout}, cmd.OutOrStdout())

	recordCheckRun(report)

	if !report.OK() {
		return errCheckFailed
	}
	return nil
}

// recordCheckRun writes the report to the journal when it is enabled
func recordCheckRun(report *dbcheck.Report) {
	if globalStore == nil {
		return
	}

	run := &store.CheckRun{
		Dialect:       report.Dialect,
		Target:        report.Target,
		Status:        "success",
		ServerVersion: report.Version,
		TableCount:    len(report.Tables),
		StartTime:     report.StartTime,
		EndTime:       report.EndTime,
	}

	switch {
	case report.CheckErr != nil:
		run.Status = "failed"
		run.ErrorKind = dbcheck.KindOf(report.CheckErr).String()
		run.ErrorMessage = report.CheckErr.Error()
	case report.TablesErr != nil:
		run.Status = "partial"
		run.ErrorKind = dbcheck.KindOf(report.TablesErr).String()
		run.ErrorMessage = report.TablesErr.Error()
	}

	if err := globalStore.CreateCheckRun(run); err != nil {
		slog.Default().Warn("failed to record check run", "error", err)
	}
}
