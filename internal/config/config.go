package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Values come from the
// YAML file first, then ICSEXPORT_* environment variables, then CLI flags.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level" env:"ICSEXPORT_LOG_LEVEL"`
	// ProductionLog switches to JSON log lines.
	ProductionLog bool `yaml:"production_log" env:"ICSEXPORT_PRODUCTION_LOG"`

	// Format is the row rendering: "table" or "csv".
	Format string `yaml:"format" env:"ICSEXPORT_FORMAT"`
	// Output is the destination file; empty writes to stdout.
	Output string `yaml:"output" env:"ICSEXPORT_OUTPUT"`
	// CSVHeader prepends a header row.
	CSVHeader bool `yaml:"csv_header" env:"ICSEXPORT_CSV_HEADER"`

	// MaxOccurrencesPerEvent is a safety cap on recurrence expansion.
	MaxOccurrencesPerEvent int `yaml:"max_occurrences_per_event" env:"ICSEXPORT_MAX_OCCURRENCES"`
	// ClipToWindowEnd also drops recurring occurrences after the window end
	// for rules carrying their own UNTIL/COUNT.
	ClipToWindowEnd bool `yaml:"clip_to_window_end" env:"ICSEXPORT_CLIP_TO_WINDOW_END"`
	// Strict aborts the run when an event cannot be expanded.
	Strict bool `yaml:"strict" env:"ICSEXPORT_STRICT"`

	// Schedule is a cron expression (e.g. "*/15 * * * *"). When set the
	// export is repeated on every tick until the process is stopped.
	Schedule string `yaml:"schedule" env:"ICSEXPORT_SCHEDULE"`

	// CacheDir stores HTTP cache data for URL sources.
	CacheDir string `yaml:"cache_dir" env:"ICSEXPORT_CACHE_DIR"`
	// FetchTimeout bounds a single HTTP fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"ICSEXPORT_FETCH_TIMEOUT"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:               "INFO",
		Format:                 "table",
		MaxOccurrencesPerEvent: 5000,
		CacheDir:               "./var/ics-cache",
		FetchTimeout:           15 * time.Second,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		c.LogLevel = "INFO"
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "table", "csv":
	default:
		c.Format = "table"
	}

	if c.MaxOccurrencesPerEvent <= 0 {
		c.MaxOccurrencesPerEvent = 5000
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/ics-cache"
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	c.Schedule = strings.TrimSpace(c.Schedule)
}

// Load loads configuration from the given YAML path and applies
// environment overrides.
//
// Behavior:
//   - empty path: defaults only, nothing is written
//   - missing file: a default config is written with 0600 perms
//   - existing file: YAML is read and normalized
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icsexport-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
