package store

import (
	"fmt"
)

// migration is one forward-only schema step
type migration struct {
	version int
	name    string
	sql     string
}

// journalMigrations must stay ordered by version; applied steps are never edited
var journalMigrations = []migration{
	{
		version: 1,
		name:    "create run tables",
		sql: `
			CREATE TABLE check_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				dialect TEXT,
				target TEXT,
				status TEXT NOT NULL,
				error_kind TEXT,
				error_message TEXT,
				server_version TEXT,
				table_count INTEGER DEFAULT 0,
				start_time DATETIME NOT NULL,
				end_time DATETIME
			);

			CREATE TABLE split_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				source_root TEXT NOT NULL,
				target TEXT NOT NULL,
				destination TEXT NOT NULL,
				stage TEXT NOT NULL,
				files_copied INTEGER DEFAULT 0,
				files_skipped INTEGER DEFAULT 0,
				vcs_failures INTEGER DEFAULT 0,
				status TEXT NOT NULL,
				error_message TEXT,
				start_time DATETIME NOT NULL,
				end_time DATETIME
			);
		`,
	},
	{
		version: 2,
		name:    "index runs by start time",
		sql: `
			CREATE INDEX idx_check_runs_start ON check_runs(start_time);
			CREATE INDEX idx_split_runs_start ON split_runs(start_time);
		`,
	},
}

// migrate brings the journal schema up to the latest version
func (s *Store) migrate() error {
	const schemaTable = `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			version INTEGER NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schemaTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := s.schemaVersion()
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range journalMigrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		pending++
	}

	s.logger.Debug("journal schema ready", "from_version", current, "applied", pending)
	return nil
}

// schemaVersion returns the highest applied migration, 0 for a new journal
func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// apply runs one migration and records its version in the same transaction
func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}
