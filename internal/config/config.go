// Package config loads the TOML application configuration: log-store
// root override, worker count, pricing overrides, and default export
// options, with command-line > environment > project > user > defaults
// precedence (spec §6).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const envPrefix = "CLIO"

// ModelPricingOverride mirrors analytics.ModelRate but every field is a
// pointer so an unset key falls back to the built-in default rather
// than zeroing it out.
type ModelPricingOverride struct {
	InputPerMTok        *float64 `toml:"input_per_mtok"`
	OutputPerMTok       *float64 `toml:"output_per_mtok"`
	CacheWrite5mPerMTok *float64 `toml:"cache_write_5m_per_mtok"`
	CacheWrite1hPerMTok *float64 `toml:"cache_write_1h_per_mtok"`
	CacheReadPerMTok    *float64 `toml:"cache_read_per_mtok"`
	LongInputPerMTok    *float64 `toml:"long_input_per_mtok"`
	LongOutputPerMTok   *float64 `toml:"long_output_per_mtok"`
}

// PricingOverrides maps a normalized model name to rate overrides.
type PricingOverrides map[string]ModelPricingOverride

// ExportDefaults seeds internal/export.Options for CLI invocations that
// don't specify every flag.
type ExportDefaults struct {
	IncludeThinking     bool   `toml:"include_thinking"`
	IncludeTools        bool   `toml:"include_tools"`
	IncludeToolResults  bool   `toml:"include_tool_results"`
	IncludeSystem       bool   `toml:"include_system"`
	IncludeTimestamps   bool   `toml:"include_timestamps"`
	IncludeUsage        bool   `toml:"include_usage"`
	IncludeMetadata     bool   `toml:"include_metadata"`
	MainThreadOnly      bool   `toml:"main_thread_only"`
	Pretty              bool   `toml:"pretty"`
	RedactionPolicy     string `toml:"redaction_policy"`
	LineWidth           int    `toml:"line_width"`
	Theme               string `toml:"theme"`
}

// Config is the root application configuration.
type Config struct {
	LogStoreRoot string           `toml:"log_store_root"`
	Workers      int              `toml:"workers"`
	Pricing      PricingOverrides `toml:"pricing"`
	Export       ExportDefaults   `toml:"export"`
}

// Default returns the built-in configuration used when no file or
// environment override is present.
func Default() Config {
	return Config{
		Workers: 0, // 0 means "use runtime.NumCPU()"; see internal/ingest.
		Export: ExportDefaults{
			IncludeTimestamps: true,
			IncludeMetadata:   true,
			RedactionPolicy:   "none",
			LineWidth:         100,
			Theme:             "light",
		},
	}
}

// UserConfigPath returns the XDG-aware path to the per-user config file.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clio", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "clio", "config.toml")
}

// ProjectConfigPath returns the project-local config file path relative to cwd.
func ProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, ".clio.toml")
}

// Load builds the effective configuration: defaults, overlaid by the
// user config file, overlaid by the project config file, overlaid by
// CLIO_* environment variables. explicitRoot, if non-empty, wins over
// everything (it represents a command-line flag).
func Load(cwd, explicitRoot string) (Config, error) {
	cfg := Default()

	if path := UserConfigPath(); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := mergeFile(&cfg, ProjectConfigPath(cwd)); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)

	if explicitRoot != "" {
		cfg.LogStoreRoot = explicitRoot
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil // absence of an optional config file is not an error
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// applyEnvOverrides reads CLIO_<SECTION>_<KEY> variables for the small
// set of scalar fields that make sense to override without a file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envPrefix + "_GENERAL_LOG_STORE_ROOT"); v != "" {
		cfg.LogStoreRoot = v
	}
	if v := os.Getenv(envPrefix + "_GENERAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv(envPrefix + "_EXPORT_REDACTION_POLICY"); v != "" {
		cfg.Export.RedactionPolicy = strings.ToLower(v)
	}
}
