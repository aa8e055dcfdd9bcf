package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BadgerOps/petland/internal/split"
	"github.com/BadgerOps/petland/internal/store"
	"github.com/spf13/cobra"
)

var (
	splitSource      string
	splitProject     string
	splitDisplayName string
)

func newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the monorepo into backend and frontend repositories",
		Long: `Build two standalone repositories next to the monorepo:
<project>-backend from the backend manifest and <project>-frontend from the
frontend directory. Each gets a generated README, .gitignore and a fresh git
repository with an initial commit.

Existing destination directories are removed without confirmation. The
command refuses to run unless the source directory contains both backend/
and frontend/.`,
		Example: `  petland split
  petland split --source ~/src/PetLand
  petland split --project petland --display-name PetLand`,
		Args: cobra.NoArgs,
		RunE: splitRun,
	}

	cmd.Flags().StringVar(&splitSource, "source", "", "monorepo root (defaults to the working directory)")
	cmd.Flags().StringVar(&splitProject, "project", "", "destination name prefix (defaults to the lowercased source directory name)")
	cmd.Flags().StringVar(&splitDisplayName, "display-name", "", "name used in generated docs and commit messages")

	return cmd
}

func splitRun(cmd *cobra.Command, args []string) error {
	log := slog.Default()
	out := cmd.OutOrStdout()

	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	root := splitSource
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve source: %w", err)
	}

	fs := split.NewOSFS()
	if err := split.CheckPreconditions(fs, root, globalCfg.Split.FrontendDir); err != nil {
		fmt.Fprintf(out, "[FAIL] %v\n", err)
		return err
	}

	if err := initializeJournal(); err != nil {
		return err
	}

	opts := split.Options{
		SourceRoot:      root,
		BackendManifest: globalCfg.Split.BackendManifest,
		FrontendDir:     globalCfg.Split.FrontendDir,
		Project:         firstNonEmpty(splitProject, globalCfg.Split.Project),
		DisplayName:     firstNonEmpty(splitDisplayName, globalCfg.Split.DisplayName),
		GitBinary:       globalCfg.Split.GitBinary,
	}

	fmt.Fprintf(out, "Splitting %s into separate repositories...\n", filepath.Base(root))
	fmt.Fprintln(out, strings.Repeat("=", 60))

	partitioner := split.NewPartitioner(fs, split.ExecRunner{}, out, log)
	result, err := partitioner.Partition(cmd.Context(), opts)

	recordSplitRuns(result, err)

	if err != nil {
		fmt.Fprintf(out, "[FAIL] %v\n", err)
		return err
	}

	split.PrintSummary(out, result)
	return nil
}

// recordSplitRuns writes one journal row per target that was attempted
func recordSplitRuns(result *split.Result, runErr error) {
	if globalStore == nil || result == nil {
		return
	}

	for _, tr := range result.Targets {
		run := &store.SplitRun{
			SourceRoot:   result.SourceRoot,
			Target:       string(tr.Kind),
			Destination:  tr.Dest,
			Stage:        tr.Stage.String(),
			FilesCopied:  len(tr.Copied),
			FilesSkipped: len(tr.Skipped),
			VCSFailures:  len(tr.VCSErrors),
			Status:       "success",
			StartTime:    tr.StartTime,
			EndTime:      tr.EndTime,
		}

		switch {
		case tr.Err != nil:
			run.Status = "failed"
			run.ErrorMessage = tr.Err.Error()
		case len(tr.VCSErrors) > 0:
			run.Status = "partial"
			run.ErrorMessage = tr.VCSErrors[0].Error()
		}

		if err := globalStore.CreateSplitRun(run); err != nil {
			slog.Default().Warn("failed to record split run", "target", tr.Kind, "error", err)
		}
	}

	if runErr != nil {
		slog.Default().Debug("split run recorded with error", "error", runErr)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
