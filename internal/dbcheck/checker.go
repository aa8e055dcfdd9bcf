package dbcheck

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// ConnectionConfig is the explicit input of every check. It is never read
// from the process environment inside this package.
type ConnectionConfig struct {
	URL     string
	Timeout time.Duration
}

// OpenFunc opens a database handle; sql.Open by default.
type OpenFunc func(driverName, dsn string) (*sql.DB, error)

// Checker verifies database reachability and lists its tables.
type Checker struct {
	open   OpenFunc
	logger *slog.Logger
}

// NewChecker creates a checker. A nil open func means sql.Open.
func NewChecker(open OpenFunc, logger *slog.Logger) *Checker {
	if open == nil {
		open = sql.Open
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{open: open, logger: logger}
}

// CheckConnection connects, runs the version query and returns the server
// version. The handle is released on every path.
func (c *Checker) CheckConnection(ctx context.Context, cfg ConnectionConfig) (string, error) {
	db, dialect, err := c.connect(cfg, KindConnectivity)
	if err != nil {
		return "", err
	}
	defer c.release(db)

	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", newError(KindConnectivity, "connect", err)
	}

	var version string
	if err := db.QueryRowContext(ctx, dialect.VersionQuery).Scan(&version); err != nil {
		return "", newError(KindConnectivity, "query version", err)
	}

	c.logger.Debug("database reachable", "dialect", dialect.Name, "version", version)
	return version, nil
}

// ListTables returns the table names of the default schema, sorted and
// without duplicates.
func (c *Checker) ListTables(ctx context.Context, cfg ConnectionConfig) ([]string, error) {
	db, dialect, err := c.connect(cfg, KindQuery)
	if err != nil {
		return nil, err
	}
	defer c.release(db)

	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, dialect.TablesQuery)
	if err != nil {
		return nil, newError(KindQuery, "list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, newError(KindQuery, "scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindQuery, "iterate tables", err)
	}

	tables = sortUnique(tables)
	c.logger.Debug("tables listed", "dialect", dialect.Name, "count", len(tables))
	return tables, nil
}

// connect resolves the URL and opens a handle. Open failures are reported
// with openKind so table listing failures stay query errors.
func (c *Checker) connect(cfg ConnectionConfig, openKind Kind) (*sql.DB, Dialect, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, Dialect{}, newError(KindConfiguration, "resolve url", ErrMissingURL)
	}

	dialect, dsn, err := ResolveDialect(cfg.URL)
	if err != nil {
		return nil, Dialect{}, newError(KindConfiguration, "resolve url", err)
	}

	db, err := c.open(dialect.DriverName, dsn)
	if err != nil {
		return nil, Dialect{}, newError(openKind, "open", err)
	}
	// single round-trip per call
	db.SetMaxOpenConns(1)
	return db, dialect, nil
}

func (c *Checker) release(db *sql.DB) {
	if err := db.Close(); err != nil {
		c.logger.Warn("failed to close database handle", "error", err)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func sortUnique(names []string) []string {
	if len(names) == 0 {
		return names
	}
	sort.Strings(names)
	out := names[:1]
	for _, n := range names[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}
