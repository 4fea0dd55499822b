// Package config loads tool configuration for the linekit commands
// from an optional TOML file overridden by LINEKIT_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "LINEKIT_"

// Config holds the settings shared by the linekit tools.
type Config struct {
	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	History HistoryConfig `toml:"history"`
	REPL    REPLConfig    `toml:"repl"`
	Watch   WatchConfig   `toml:"watch"`
	Bench   BenchConfig   `toml:"bench"`
}

// HistoryConfig bounds the edit log kept by the tools.
type HistoryConfig struct {
	// MaxRecords is the committed history retained before the log is
	// truncated from the front. Zero means unbounded.
	MaxRecords int `toml:"max_records"`
}

// REPLConfig configures the interactive driver.
type REPLConfig struct {
	// Prompt is printed before each input line.
	Prompt string `toml:"prompt"`
	// Color enables colored output.
	Color bool `toml:"color"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	// Debounce is how long a file must stay quiet before its changes
	// are diffed into edit records.
	Debounce time.Duration `toml:"debounce"`
}

// BenchConfig configures the benchmark driver.
type BenchConfig struct {
	// Scenarios is the path of a YAML scenario file; empty runs the
	// built-in scenarios.
	Scenarios string `toml:"scenarios"`
	// Iterations repeats every scenario this many times.
	Iterations int `toml:"iterations"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		History:  HistoryConfig{MaxRecords: 10000},
		REPL:     REPLConfig{Prompt: "linekit> ", Color: true},
		Watch:    WatchConfig{Debounce: 200 * time.Millisecond},
		Bench:    BenchConfig{Iterations: 1},
	}
}

// Load returns the defaults overlaid with the TOML file at path (a
// missing file is not an error; an empty path skips the file) and
// then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays LINEKIT_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "HISTORY_MAX_RECORDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxRecords = n
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "REPL_PROMPT"); ok {
		cfg.REPL.Prompt = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "REPL_COLOR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.REPL.Color = b
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "WATCH_DEBOUNCE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "BENCH_SCENARIOS"); ok {
		cfg.Bench.Scenarios = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "BENCH_ITERATIONS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bench.Iterations = n
		}
	}
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
