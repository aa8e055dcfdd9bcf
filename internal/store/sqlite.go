package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed run journal
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the journal at dbPath, creating its directory, and runs migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Journal initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ============================================================================
// CheckRun Operations
// ============================================================================

// CreateCheckRun inserts a new CheckRun and sets its ID
func (s *Store) CreateCheckRun(run *CheckRun) error {
	const query = `
		INSERT INTO check_runs (
			dialect, target, status, error_kind, error_message,
			server_version, table_count, start_time, end_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		run.Dialect, run.Target, run.Status, run.ErrorKind, run.ErrorMessage,
		run.ServerVersion, run.TableCount, run.StartTime, run.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert check run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// ListCheckRuns returns the most recent check runs first
func (s *Store) ListCheckRuns(limit int) ([]CheckRun, error) {
	query := `
		SELECT id, dialect, target, status, error_kind, error_message,
		       server_version, table_count, start_time, end_time
		FROM check_runs
		ORDER BY start_time DESC, id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check runs: %w", err)
	}
	defer rows.Close()

	var runs []CheckRun
	for rows.Next() {
		run := CheckRun{}
		var dialect, target, errorKind, errorMessage, version sql.NullString
		var endTime sql.NullTime
		err := rows.Scan(
			&run.ID, &dialect, &target, &run.Status, &errorKind, &errorMessage,
			&version, &run.TableCount, &run.StartTime, &endTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		run.Dialect = dialect.String
		run.Target = target.String
		run.ErrorKind = errorKind.String
		run.ErrorMessage = errorMessage.String
		run.ServerVersion = version.String
		if endTime.Valid {
			run.EndTime = endTime.Time
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check runs: %w", err)
	}

	return runs, nil
}

// ============================================================================
// SplitRun Operations
// ============================================================================

// CreateSplitRun inserts a new SplitRun and sets its ID
func (s *Store) CreateSplitRun(run *SplitRun) error {
	const query = `
		INSERT INTO split_runs (
			source_root, target, destination, stage, files_copied, files_skipped,
			vcs_failures, status, error_message, start_time, end_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		run.SourceRoot, run.Target, run.Destination, run.Stage, run.FilesCopied,
		run.FilesSkipped, run.VCSFailures, run.Status, run.ErrorMessage,
		run.StartTime, run.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// ListSplitRuns returns the most recent split runs first, optionally for one target
func (s *Store) ListSplitRuns(target string, limit int) ([]SplitRun, error) {
	query := `
		SELECT id, source_root, target, destination, stage, files_copied,
		       files_skipped, vcs_failures, status, error_message, start_time, end_time
		FROM split_runs
	`
	var args []interface{}

	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}

	query += " ORDER BY start_time DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query split runs: %w", err)
	}
	defer rows.Close()

	var runs []SplitRun
	for rows.Next() {
		run := SplitRun{}
		var errorMessage sql.NullString
		var endTime sql.NullTime
		err := rows.Scan(
			&run.ID, &run.SourceRoot, &run.Target, &run.Destination, &run.Stage,
			&run.FilesCopied, &run.FilesSkipped, &run.VCSFailures, &run.Status,
			&errorMessage, &run.StartTime, &endTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split run: %w", err)
		}
		run.ErrorMessage = errorMessage.String
		if endTime.Valid {
			run.EndTime = endTime.Time
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating split runs: %w", err)
	}

	return runs, nil
}
