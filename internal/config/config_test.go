package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every STORYKEEPER_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigPath, EnvDataDir, EnvDatabaseFile, EnvLogLevel,
		EnvScanner, EnvQueryTimeout, EnvHTTPAddr,
	} {
		if v, ok := os.LookupEnv(key); ok {
			_ = os.Unsetenv(key)
			t.Cleanup(func() { _ = os.Setenv(key, v) })
		}
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
	if cfg.HTTP.SeriesHeader != "X-Series-ID" || cfg.QueryTimeout != Duration(5*time.Second) {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, `
data_dir: `+dir+`
database_file: novel.db
log_level: debug
scanner: word
query_timeout: 250ms
http:
  addr: ":8089"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != dir || cfg.DatabaseFile != "novel.db" {
		t.Errorf("store fields = %q, %q", cfg.DataDir, cfg.DatabaseFile)
	}
	if cfg.Scanner != "word" || cfg.LogLevel != "debug" {
		t.Errorf("scanner/log = %q, %q", cfg.Scanner, cfg.LogLevel)
	}
	if cfg.QueryTimeout != Duration(250*time.Millisecond) {
		t.Errorf("QueryTimeout = %s", cfg.QueryTimeout)
	}
	if cfg.HTTP.Addr != ":8089" || cfg.HTTP.SeriesHeader != "X-Series-ID" {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if sc := cfg.StoreConfig(); sc.DataDir != dir || sc.DatabaseFile != "novel.db" {
		t.Errorf("StoreConfig() = %+v", sc)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "scanner: word\nhttp:\n  addr: \":1\"\n")
	t.Setenv(EnvScanner, "substring")
	t.Setenv(EnvHTTPAddr, ":9000")
	t.Setenv(EnvQueryTimeout, "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Scanner != "substring" || cfg.HTTP.Addr != ":9000" || cfg.QueryTimeout != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_QueryTimeoutForms(t *testing.T) {
	tests := []struct {
		yaml string
		want time.Duration
	}{
		{"query_timeout: 0\n", 0},
		{"query_timeout: 0s\n", 0},
		{"query_timeout: 30\n", 30 * time.Second},
		{"query_timeout: 1m\n", time.Minute},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.yaml), func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(writeFile(t, tt.yaml))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got := time.Duration(cfg.QueryTimeout); got != tt.want {
				t.Errorf("QueryTimeout = %s, want %s", got, tt.want)
			}
		})
	}

	clearEnv(t)
	t.Setenv(EnvQueryTimeout, "12")
	cfg, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.QueryTimeout != Duration(12*time.Second) {
		t.Errorf("env QueryTimeout = %s, want 12s", cfg.QueryTimeout)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "log_level: warn\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{"bad yaml", "scanner: [", nil, "parsing config"},
		{"bad scanner", "scanner: semantic", nil, "scanner"},
		{"bad log level", "log_level: loud", nil, "log_level"},
		{"negative timeout", "query_timeout: -1s", nil, "query_timeout"},
		{"bad env timeout", "", map[string]string{EnvQueryTimeout: "soon"}, EnvQueryTimeout},
		{"bad file timeout", "query_timeout: soon", nil, "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}
