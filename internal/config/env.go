package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Where a database URL was resolved from.
const (
	SourceFlag    = "flag"
	SourceEnv     = "environment"
	SourceEnvFile = "env file"
	SourceConfig  = "config file"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ReadEnvFiles parses dotenv files in order. Missing files are skipped and
// keys from earlier files take precedence over later ones.
func ReadEnvFiles(paths []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("checking env file %q: %w", path, err)
		}
		if info.IsDir() {
			continue
		}

		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("parsing env file %q: %w", path, err)
		}
		for k, v := range values {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// ResolveDatabaseURL picks the connection string from, in priority order, the
// explicit override, the process environment, the configured env files and
// the config file. An empty result is not an error here; the checker reports it.
func (c *Config) ResolveDatabaseURL(override string, lookup LookupFunc) (url, source string, err error) {
	if v := strings.TrimSpace(override); v != "" {
		return v, SourceFlag, nil
	}

	if lookup != nil {
		if v, ok := lookup(DatabaseURLEnv); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), SourceEnv, nil
		}
	}

	values, err := ReadEnvFiles(c.Database.EnvFiles)
	if err != nil {
		return "", "", err
	}
	if v := strings.TrimSpace(values[DatabaseURLEnv]); v != "" {
		return v, SourceEnvFile, nil
	}

	if v := strings.TrimSpace(c.Database.URL); v != "" {
		return v, SourceConfig, nil
	}

	return "", "", nil
}
