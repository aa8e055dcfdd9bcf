package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BadgerOps/petland/internal/safety"
	"gopkg.in/yaml.v3"
)

// DatabaseURLEnv is the environment variable holding the connection string.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the top-level configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Split    SplitConfig    `yaml:"split"`
	Journal  JournalConfig  `yaml:"journal"`
}

// DatabaseConfig holds connectivity check settings
type DatabaseConfig struct {
	URL      string   `yaml:"url"`
	Timeout  string   `yaml:"timeout"`
	EnvFiles []string `yaml:"env_files"`
}

// SplitConfig holds repository partitioning settings
type SplitConfig struct {
	Project         string   `yaml:"project"`
	DisplayName     string   `yaml:"display_name"`
	BackendManifest []string `yaml:"backend_manifest"`
	FrontendDir     string   `yaml:"frontend_dir"`
	GitBinary       string   `yaml:"git_binary"`
}

// JournalConfig holds run history settings. An empty path disables the journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// DefaultBackendManifest lists the monorepo paths that make up the backend repository.
func DefaultBackendManifest() []string {
	return []string{
		"backend/",
		"alembic/",
		"alembic.ini",
		"requirements.txt",
		"runtime.txt",
		"Procfile",
		"render.yaml",
		"env.example",
		"MIGRATION_TO_SUPABASE.md",
		"scripts/migrate_to_supabase.py",
		"scripts/server_utils.sh",
		"scripts/setup_redis.sh",
		"scripts/start_server.py",
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:      "",
			Timeout:  "",
			EnvFiles: []string{".env"},
		},
		Split: SplitConfig{
			BackendManifest: DefaultBackendManifest(),
			FrontendDir:     "frontend",
			GitBinary:       "git",
		},
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"petland.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "petland", "petland.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}

// Validate checks values that would otherwise fail late, after destructive work started.
func (c *Config) Validate() error {
	if _, err := c.Database.ParsedTimeout(); err != nil {
		return err
	}
	for _, entry := range c.Split.BackendManifest {
		if _, err := safety.CleanRelativePath(entry); err != nil {
			return fmt.Errorf("split.backend_manifest: %w", err)
		}
	}
	if c.Split.FrontendDir != "" {
		if _, err := safety.CleanRelativePath(c.Split.FrontendDir); err != nil {
			return fmt.Errorf("split.frontend_dir: %w", err)
		}
	}
	return nil
}

// ParsedTimeout returns the per round-trip database timeout. Zero means no timeout.
func (d DatabaseConfig) ParsedTimeout() (time.Duration, error) {
	if d.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 0, fmt.Errorf("database.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("database.timeout must not be negative: %s", d.Timeout)
	}
	return timeout, nil
}
