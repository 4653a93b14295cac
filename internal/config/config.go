// Package config loads storykeeper configuration.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML
// file, then STORYKEEPER_* environment variables. The CLI loads .env into
// the environment before Load runs, so .env values behave like real env vars.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/store"
)

// Environment variables read by Load.
const (
	EnvConfigPath   = "STORYKEEPER_CONFIG"
	EnvDataDir      = "STORYKEEPER_DATA_DIR"
	EnvDatabaseFile = "STORYKEEPER_DATABASE_FILE"
	EnvLogLevel     = "STORYKEEPER_LOG_LEVEL"
	EnvScanner      = "STORYKEEPER_SCANNER"
	EnvQueryTimeout = "STORYKEEPER_QUERY_TIMEOUT"
	EnvHTTPAddr     = "STORYKEEPER_HTTP_ADDR"
)

// Config is the full runtime configuration.
type Config struct {
	DataDir      string        `yaml:"data_dir"`
	DatabaseFile string        `yaml:"database_file"`
	LogLevel     string        `yaml:"log_level"`
	Scanner      string        `yaml:"scanner"`
	QueryTimeout Duration      `yaml:"query_timeout"`
	HTTP         HTTPConfig    `yaml:"http"`
}

// HTTPConfig configures the optional REST transport.
type HTTPConfig struct {
	// Addr is the listen address. Empty disables the REST transport.
	Addr         string `yaml:"addr"`
	SeriesHeader string `yaml:"series_header"`
}

// Duration is a time.Duration read from YAML or the environment either as a
// Go duration string ("250ms", "5s") or as a bare number of seconds. Zero
// disables the timeout it configures.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = v
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

func parseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(time.Duration(n) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use a number of seconds or a value like 5s", s)
	}
	return Duration(d), nil
}

// Default returns the built-in configuration.
func Default() Config {
	sc := store.DefaultConfig()
	return Config{
		DataDir:      sc.DataDir,
		DatabaseFile: sc.DatabaseFile,
		LogLevel:     "info",
		Scanner:      knowledge.ScannerSubstring,
		QueryTimeout: Duration(5 * time.Second),
		HTTP:         HTTPConfig{SeriesHeader: "X-Series-ID"},
	}
}

// DefaultPath returns ~/.storykeeper/config.yaml.
func DefaultPath() string {
	return filepath.Join(store.DefaultConfig().DataDir, "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path falls back to $STORYKEEPER_CONFIG, then to
// DefaultPath. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for env, dst := range map[string]*string{
		EnvDataDir:      &c.DataDir,
		EnvDatabaseFile: &c.DatabaseFile,
		EnvLogLevel:     &c.LogLevel,
		EnvScanner:      &c.Scanner,
		EnvHTTPAddr:     &c.HTTP.Addr,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(EnvQueryTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvQueryTimeout, err)
		}
		c.QueryTimeout = d
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if _, err := knowledge.ScannerByName(c.Scanner); err != nil {
		errs = append(errs, fmt.Errorf("scanner: %w", err))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", c.LogLevel))
	}
	if c.QueryTimeout < 0 {
		errs = append(errs, fmt.Errorf("query_timeout must not be negative, got %s", c.QueryTimeout))
	}
	return errors.Join(errs...)
}

// StoreConfig returns the store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{DataDir: c.DataDir, DatabaseFile: c.DatabaseFile}
}
