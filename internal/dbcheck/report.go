package dbcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Report summarizes one connectivity check run.
type Report struct {
	Dialect   string
	Target    string
	Version   string
	Tables    []string
	CheckErr  error
	TablesErr error
	StartTime time.Time
	EndTime   time.Time
}

// OK reports whether the database was reachable. A failed table listing
// does not make a run unsuccessful.
func (r *Report) OK() bool {
	return r.CheckErr == nil
}

// Run checks the connection and, only if that succeeds, lists tables. All
// progress is written to out as human-readable text.
func (c *Checker) Run(ctx context.Context, cfg ConnectionConfig, out io.Writer) *Report {
	report := &Report{
		Target:    Redact(cfg.URL),
		StartTime: time.Now(),
	}
	if d, _, err := ResolveDialect(cfg.URL); err == nil {
		report.Dialect = d.Name
	}

	fmt.Fprintln(out, "Starting database connectivity check...")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, "Checking database connection...")

	version, err := c.CheckConnection(ctx, cfg)
	if err != nil {
		report.CheckErr = err
		report.EndTime = time.Now()
		printCheckFailure(out, err)
		c.logger.Error("connectivity check failed", "kind", KindOf(err).String(), "error", err)
		return report
	}
	report.Version = version

	fmt.Fprintf(out, "[OK] Connected to %s (%s)\n", report.Dialect, report.Target)
	fmt.Fprintf(out, "     Server version: %s\n", version)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Checking tables...")
	tables, err := c.ListTables(ctx, cfg)
	switch {
	case err != nil:
		report.TablesErr = err
		fmt.Fprintf(out, "[FAIL] Could not list tables: %v\n", err)
		c.logger.Warn("table listing failed", "error", err)
	case len(tables) == 0:
		fmt.Fprintln(out, "[WARN] No tables found. Run the migrations first.")
	default:
		report.Tables = tables
		fmt.Fprintln(out, "[OK] Tables found:")
		for _, table := range tables {
			fmt.Fprintf(out, "   - %s\n", table)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, "Database check completed!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "1. Run the migrations: alembic upgrade head")
	fmt.Fprintln(out, "2. Start the application: python -m uvicorn backend.main:app --reload")
	fmt.Fprintln(out, "3. Try the endpoints at: http://localhost:8000/docs")

	report.EndTime = time.Now()
	return report
}

func printCheckFailure(out io.Writer, err error) {
	if errors.Is(err, ErrConfiguration) {
		fmt.Fprintf(out, "[FAIL] Invalid database configuration: %v\n", err)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Set DATABASE_URL in the environment, in a .env file, or as database.url in petland.yaml.")
		return
	}
	fmt.Fprintf(out, "[FAIL] Could not connect to the database: %v\n", err)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Could not reach the database. Verify the host, credentials and network access in DATABASE_URL.")
}
