package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.REPL.Prompt != "linekit> " {
		t.Errorf("Prompt = %q", cfg.REPL.Prompt)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err != nil {
		t.Errorf("missing file: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linekit.toml")
	data := `
log_level = "debug"

[history]
max_records = 42

[repl]
prompt = ">> "
color = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.History.MaxRecords != 42 {
		t.Errorf("MaxRecords = %d", cfg.History.MaxRecords)
	}
	if cfg.REPL.Prompt != ">> " || cfg.REPL.Color {
		t.Errorf("REPL = %+v", cfg.REPL)
	}
	// Untouched sections keep their defaults.
	if cfg.Bench.Iterations != 1 {
		t.Errorf("Iterations = %d, want default 1", cfg.Bench.Iterations)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("log_level = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LINEKIT_LOG_LEVEL", "error")
	t.Setenv("LINEKIT_HISTORY_MAX_RECORDS", "7")
	t.Setenv("LINEKIT_REPL_COLOR", "false")
	t.Setenv("LINEKIT_WATCH_DEBOUNCE", "1s")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.History.MaxRecords != 7 {
		t.Errorf("MaxRecords = %d", cfg.History.MaxRecords)
	}
	if cfg.REPL.Color {
		t.Error("Color should be false")
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linekit.toml")
	if err := os.WriteFile(path, []byte(`log_level = "debug"`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LINEKIT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env to win", cfg.LogLevel)
	}
}
