package split

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/BadgerOps/petland/internal/safety"
	"github.com/google/shlex"
)

// TargetKind names one of the two output repositories.
type TargetKind string

const (
	TargetBackend  TargetKind = "backend"
	TargetFrontend TargetKind = "frontend"
)

// Stage is the progress of one target tree. Stages only move forward.
type Stage int

const (
	StageNotStarted Stage = iota
	StageDestinationCleared
	StageDestinationPopulated
	StageArtifactsWritten
	StageVersionControlInitialized
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageDestinationCleared:
		return "destination_cleared"
	case StageDestinationPopulated:
		return "destination_populated"
	case StageArtifactsWritten:
		return "artifacts_written"
	case StageVersionControlInitialized:
		return "version_control_initialized"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Options configures a partition run.
type Options struct {
	SourceRoot      string
	BackendManifest []string
	// FrontendDir is copied whole and hoisted to the frontend repository root.
	FrontendDir string
	// Project is the destination name prefix; defaults to the lowercased
	// source directory name.
	Project string
	// DisplayName is used in generated docs and commit messages; defaults
	// to the source directory name.
	DisplayName string
	// GitBinary is the version control command, optionally with leading
	// arguments such as "git -c user.email=ci@example.com".
	GitBinary string
}

// TargetResult is the outcome for one destination tree.
type TargetResult struct {
	Kind      TargetKind
	Dest      string
	Stage     Stage
	Copied    []string
	Skipped   []string
	VCSErrors []*VersionControlError
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// Result is the outcome of a partition run.
type Result struct {
	SourceRoot   string
	BackendPath  string
	FrontendPath string
	Targets      []*TargetResult
}

// Partitioner splits the monorepo into backend and frontend repositories.
type Partitioner struct {
	fs     Filesystem
	runner CommandRunner
	out    io.Writer
	logger *slog.Logger
}

// NewPartitioner creates a partitioner. Console progress goes to out.
func NewPartitioner(fs Filesystem, runner CommandRunner, out io.Writer, logger *slog.Logger) *Partitioner {
	if fs == nil {
		fs = NewOSFS()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Partitioner{fs: fs, runner: runner, out: out, logger: logger}
}

// CheckPreconditions verifies that root directly contains the backend and
// frontend directories. It only reads.
func CheckPreconditions(fs Filesystem, root, frontendDir string) error {
	if frontendDir == "" {
		frontendDir = string(TargetFrontend)
	}
	for _, dir := range []string{string(TargetBackend), frontendDir} {
		ok, err := fs.IsDir(filepath.Join(root, dir))
		if err != nil || !ok {
			return &PreconditionError{
				Root:   root,
				Reason: fmt.Sprintf("missing %q directory; run from the project root", dir),
			}
		}
	}
	return nil
}

// Partition builds both repositories, backend first. A precondition failure
// returns before any write. A failure while clearing, populating or writing
// artifacts stops the run; completed file operations are not rolled back.
func (p *Partitioner) Partition(ctx context.Context, opts Options) (*Result, error) {
	opts, err := p.normalize(opts)
	if err != nil {
		return nil, err
	}

	if err := CheckPreconditions(p.fs, opts.SourceRoot, opts.FrontendDir); err != nil {
		return nil, err
	}

	parent := filepath.Dir(opts.SourceRoot)
	result := &Result{
		SourceRoot:   opts.SourceRoot,
		BackendPath:  filepath.Join(parent, opts.Project+"-backend"),
		FrontendPath: filepath.Join(parent, opts.Project+"-frontend"),
	}
	for _, dest := range []string{result.BackendPath, result.FrontendPath} {
		if err := safety.CheckRemovable(dest, opts.SourceRoot); err != nil {
			return nil, &PreconditionError{Root: opts.SourceRoot, Reason: err.Error()}
		}
	}

	p.logger.Info("partition started",
		"source", opts.SourceRoot,
		"backend", result.BackendPath,
		"frontend", result.FrontendPath,
	)

	backend := p.buildTarget(ctx, opts, TargetBackend, result.BackendPath, p.populateBackend)
	result.Targets = append(result.Targets, backend)
	if backend.Err != nil {
		return result, fmt.Errorf("building backend repository: %w", backend.Err)
	}

	frontend := p.buildTarget(ctx, opts, TargetFrontend, result.FrontendPath, p.populateFrontend)
	result.Targets = append(result.Targets, frontend)
	if frontend.Err != nil {
		return result, fmt.Errorf("building frontend repository: %w", frontend.Err)
	}

	return result, nil
}

func (p *Partitioner) normalize(opts Options) (Options, error) {
	if opts.SourceRoot == "" {
		opts.SourceRoot = "."
	}
	root, err := filepath.Abs(opts.SourceRoot)
	if err != nil {
		return opts, fmt.Errorf("resolving source root: %w", err)
	}
	opts.SourceRoot = root

	if opts.FrontendDir == "" {
		opts.FrontendDir = string(TargetFrontend)
	}
	if opts.DisplayName == "" {
		opts.DisplayName = filepath.Base(root)
	}
	if opts.Project == "" {
		opts.Project = strings.ToLower(filepath.Base(root))
	}
	if opts.GitBinary == "" {
		opts.GitBinary = "git"
	}

	for _, entry := range append([]string{opts.FrontendDir}, opts.BackendManifest...) {
		if _, err := safety.CleanRelativePath(entry); err != nil {
			return opts, &PreconditionError{Root: root, Reason: fmt.Sprintf("invalid manifest entry: %v", err)}
		}
	}
	if _, _, err := gitCommand(opts.GitBinary); err != nil {
		return opts, &PreconditionError{Root: root, Reason: err.Error()}
	}
	if _, err := safety.CleanRelativePath(opts.Project); err != nil || strings.ContainsRune(opts.Project, filepath.Separator) {
		return opts, &PreconditionError{Root: root, Reason: fmt.Sprintf("invalid project name %q", opts.Project)}
	}
	return opts, nil
}

type populateFunc func(opts Options, dest string, tr *TargetResult) error

func (p *Partitioner) buildTarget(ctx context.Context, opts Options, kind TargetKind, dest string, populate populateFunc) *TargetResult {
	tr := &TargetResult{Kind: kind, Dest: dest, Stage: StageNotStarted, StartTime: time.Now()}
	defer func() { tr.EndTime = time.Now() }()

	fmt.Fprintf(p.out, "Creating %s repository...\n", kind)

	if err := p.clearDestination(dest); err != nil {
		tr.Err = err
		return tr
	}
	tr.Stage = StageDestinationCleared

	if err := ctx.Err(); err != nil {
		tr.Err = err
		return tr
	}
	if err := populate(opts, dest, tr); err != nil {
		tr.Err = err
		return tr
	}
	tr.Stage = StageDestinationPopulated

	if err := p.writeArtifacts(kind, opts, dest); err != nil {
		tr.Err = err
		return tr
	}
	tr.Stage = StageArtifactsWritten

	tr.VCSErrors = p.initRepository(ctx, opts, kind, dest)
	tr.Stage = StageVersionControlInitialized

	fmt.Fprintf(p.out, "[OK] %s repository created at: %s\n", titleCase(string(kind)), dest)
	p.logger.Info("target built",
		"target", kind,
		"dest", dest,
		"copied", len(tr.Copied),
		"skipped", len(tr.Skipped),
		"vcs_errors", len(tr.VCSErrors),
	)
	return tr
}

// clearDestination removes any previous tree at dest and recreates it empty.
func (p *Partitioner) clearDestination(dest string) error {
	exists, err := p.fs.Exists(dest)
	if err != nil {
		return fmt.Errorf("checking destination %s: %w", dest, err)
	}
	if exists {
		fmt.Fprintf(p.out, "[WARN] Directory %s already exists. Removing it...\n", filepath.Base(dest))
		if err := p.fs.RemoveAll(dest); err != nil {
			return fmt.Errorf("removing destination %s: %w", dest, err)
		}
	}
	if err := p.fs.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating destination %s: %w", dest, err)
	}
	return nil
}

// populateBackend copies every manifest entry present under the source root
// to dest/<base name>. Absent entries are skipped silently.
func (p *Partitioner) populateBackend(opts Options, dest string, tr *TargetResult) error {
	for _, entry := range opts.BackendManifest {
		src, err := safety.JoinUnder(opts.SourceRoot, entry)
		if err != nil {
			return err
		}

		exists, err := p.fs.Exists(src)
		if err != nil {
			return fmt.Errorf("checking %s: %w", entry, err)
		}
		if !exists {
			tr.Skipped = append(tr.Skipped, entry)
			p.logger.Debug("manifest entry not present, skipping", "entry", entry)
			continue
		}

		if err := p.fs.Copy(src, filepath.Join(dest, filepath.Base(src))); err != nil {
			return fmt.Errorf("copying %s: %w", entry, err)
		}
		tr.Copied = append(tr.Copied, entry)
		fmt.Fprintf(p.out, "[OK] Copied: %s\n", entry)
	}
	return nil
}

// populateFrontend copies the frontend directory into dest, then hoists its
// children so the frontend contents become the repository root.
func (p *Partitioner) populateFrontend(opts Options, dest string, tr *TargetResult) error {
	src, err := safety.JoinUnder(opts.SourceRoot, opts.FrontendDir)
	if err != nil {
		return err
	}
	nested := filepath.Join(dest, filepath.Base(src))

	if err := p.fs.Copy(src, nested); err != nil {
		return fmt.Errorf("copying %s: %w", opts.FrontendDir, err)
	}

	children, err := p.fs.ReadDir(nested)
	if err != nil {
		return fmt.Errorf("reading %s: %w", nested, err)
	}
	for _, child := range children {
		from := filepath.Join(nested, child.Name())
		to := filepath.Join(dest, child.Name())
		if err := p.fs.Rename(from, to); err != nil {
			return fmt.Errorf("moving %s to repository root: %w", child.Name(), err)
		}
	}

	if err := p.fs.Remove(nested); err != nil {
		return fmt.Errorf("removing nested %s: %w", nested, err)
	}

	tr.Copied = append(tr.Copied, opts.FrontendDir)
	fmt.Fprintf(p.out, "[OK] Copied: %s\n", opts.FrontendDir)
	return nil
}

// writeArtifacts writes generated files, replacing any copied file of the same name.
func (p *Partitioner) writeArtifacts(kind TargetKind, opts Options, dest string) error {
	artifacts, err := RenderArtifacts(kind, ArtifactData{Project: opts.Project, DisplayName: opts.DisplayName})
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		if err := p.fs.WriteFile(filepath.Join(dest, a.Name), a.Content, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.Name, err)
		}
	}
	return nil
}

// initRepository runs init, add and commit. Failures are collected and
// printed; every command is attempted.
func (p *Partitioner) initRepository(ctx context.Context, opts Options, kind TargetKind, dest string) []*VersionControlError {
	message := fmt.Sprintf("Initial commit: %s %s", opts.DisplayName, titleCase(string(kind)))
	commands := [][]string{
		{"init"},
		{"add", "."},
		{"commit", "-m", message},
	}

	// validated in normalize
	name, prefix, _ := gitCommand(opts.GitBinary)

	var failures []*VersionControlError
	for _, args := range commands {
		args = append(append([]string{}, prefix...), args...)
		res := p.runner.Run(ctx, dest, name, args...)
		if !res.Failed() {
			continue
		}
		vcsErr := &VersionControlError{
			Command:  name + " " + strings.Join(args, " "),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
			Err:      res.Err,
		}
		failures = append(failures, vcsErr)
		fmt.Fprintf(p.out, "[FAIL] Error running: %s\n", vcsErr.Command)
		fmt.Fprintf(p.out, "Error: %s\n", strings.TrimSpace(res.Stderr))
		p.logger.Warn("version control command failed", "dir", dest, "command", vcsErr.Command, "exit_code", res.ExitCode)
	}
	return failures
}

// gitCommand splits a configured git command line into the binary and its
// leading arguments.
func gitCommand(line string) (string, []string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("invalid git command %q: %w", line, err)
	}
	if len(argv) == 0 {
		return "", nil, fmt.Errorf("empty git command")
	}
	return argv[0], argv[1:], nil
}

// PrintSummary writes the closing report of a successful partition.
func PrintSummary(out io.Writer, result *Result) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "[OK] Split completed!")
	fmt.Fprintf(out, "Backend:  %s\n", result.BackendPath)
	fmt.Fprintf(out, "Frontend: %s\n", result.FrontendPath)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "1. Push each repository to GitHub/GitLab")
	fmt.Fprintln(out, "2. Configure environment variables in each project")
	fmt.Fprintln(out, "3. Update the API URLs in the frontend")
	fmt.Fprintln(out, "4. Configure CORS in the backend")
	fmt.Fprintln(out, "5. Deploy each project separately")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
