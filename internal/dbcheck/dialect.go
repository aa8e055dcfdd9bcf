package dbcheck

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect describes how to talk to one database flavor.
type Dialect struct {
	Name         string
	DriverName   string
	VersionQuery string
	TablesQuery  string
}

var (
	postgresDialect = Dialect{
		Name:         "postgres",
		DriverName:   "postgres",
		VersionQuery: "SELECT version()",
		TablesQuery: `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = 'public'
			ORDER BY table_name
		`,
	}

	mysqlDialect = Dialect{
		Name:         "mysql",
		DriverName:   "mysql",
		VersionQuery: "SELECT VERSION()",
		TablesQuery: `
			SELECT TABLE_NAME
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE()
			ORDER BY TABLE_NAME
		`,
	}

	sqliteDialect = Dialect{
		Name:         "sqlite",
		DriverName:   "sqlite",
		VersionQuery: "SELECT sqlite_version()",
		TablesQuery: `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`,
	}
)

// ResolveDialect maps a connection URL to a dialect and a DSN the matching
// driver understands. SQLAlchemy style driver suffixes such as
// "postgresql+asyncpg" are accepted and dropped.
func ResolveDialect(rawURL string) (Dialect, string, error) {
	rawURL = strings.TrimSpace(rawURL)
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok || scheme == "" {
		return Dialect{}, "", fmt.Errorf("connection string has no scheme")
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "postgres", "postgresql":
		dsn, err := postgresDSN(rawURL)
		if err != nil {
			return Dialect{}, "", err
		}
		return postgresDialect, dsn, nil
	case "mysql", "mariadb":
		dsn, err := mysqlDSN(rawURL)
		if err != nil {
			return Dialect{}, "", err
		}
		return mysqlDialect, dsn, nil
	case "sqlite", "sqlite3":
		return sqliteDialect, sqlitePath(rawURL), nil
	default:
		return Dialect{}, "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// parseURL parses a connection URL. The returned error never repeats the
// URL, and carries no parser detail when the URL has credentials, since that
// detail can quote part of the password.
func parseURL(dialect, rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err == nil {
		return u, nil
	}
	if _, _, hasCreds := splitUserinfo(rawURL); hasCreds {
		return nil, fmt.Errorf("parsing %s url: malformed connection string; percent-encode special characters in the password", dialect)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return nil, fmt.Errorf("parsing %s url: %w", dialect, err)
}

func postgresDSN(rawURL string) (string, error) {
	u, err := parseURL("postgres", rawURL)
	if err != nil {
		return "", err
	}
	u.Scheme = "postgres"

	// asyncpg spells it "ssl", libpq spells it "sslmode"
	q := u.Query()
	if ssl := q.Get("ssl"); ssl != "" && q.Get("sslmode") == "" {
		q.Del("ssl")
		q.Set("sslmode", ssl)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func mysqlDSN(rawURL string) (string, error) {
	u, err := parseURL("mysql", rawURL)
	if err != nil {
		return "", err
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	if len(u.Query()) > 0 {
		cfg.Params = make(map[string]string)
		for key := range u.Query() {
			cfg.Params[key] = u.Query().Get(key)
		}
	}
	return cfg.FormatDSN(), nil
}

// sqlitePath follows the SQLAlchemy convention: three slashes for a
// relative path, four for an absolute one, nothing for in-memory.
func sqlitePath(rawURL string) string {
	_, rest, _ := strings.Cut(rawURL, "://")
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return ":memory:"
	}
	return rest
}

// Redact hides the password of a connection URL for display. URLs that do
// not parse are masked textually.
func Redact(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err == nil {
		if u.User == nil {
			return rawURL
		}
		return u.Redacted()
	}

	prefix, userinfo, ok := splitUserinfo(rawURL)
	if !ok {
		return rawURL
	}
	rest := rawURL[len(prefix)+len(userinfo):]
	if user, _, hasPassword := strings.Cut(userinfo, ":"); hasPassword {
		return prefix + user + ":xxxxx" + rest
	}
	return prefix + "xxxxx" + rest
}

// splitUserinfo returns everything up to and including "://" and the text
// between it and the last "@".
func splitUserinfo(rawURL string) (prefix, userinfo string, ok bool) {
	i := strings.Index(rawURL, "://")
	if i < 0 {
		return "", "", false
	}
	prefix = rawURL[:i+3]
	at := strings.LastIndex(rawURL[len(prefix):], "@")
	if at < 0 {
		return "", "", false
	}
	return prefix, rawURL[len(prefix) : len(prefix)+at], true
}
