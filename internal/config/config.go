// Package config loads scanner configuration from an optional
// deadsnakes.toml in the scanned repository and from the environment.
// Environment values win over file values; flags are applied by the CLI
// on top of both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// FileName is the optional repo-local configuration file.
const FileName = "deadsnakes.toml"

// Config is the complete scanner configuration.
type Config struct {
	Output  OutputConfig  `toml:"output"`
	Scan    ScanConfig    `toml:"scan"`
	History HistoryConfig `toml:"history"`
	Logging LoggingConfig `toml:"logging"`

	// GitHub is populated from the environment only; tokens do not
	// belong in a checked-in file.
	GitHub GitHubConfig `toml:"-"`
}

// OutputConfig controls how findings are rendered.
type OutputConfig struct {
	Format    string `toml:"format"`     // table, json, plain
	PRComment bool   `toml:"pr_comment"` // post/update a PR comment on failure
}

// ScanConfig controls file discovery.
type ScanConfig struct {
	ExcludeDirs []string `toml:"exclude_dirs"`
}

// HistoryConfig controls the local scan-history store.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// GitHubConfig identifies the pull-request discussion thread the
// notifier writes to.
type GitHubConfig struct {
	Token      string
	Repository string // owner/name
	PRNumber   string
	APIURL     string
}

// Complete reports whether the notifier has everything it needs.
func (g GitHubConfig) Complete() bool {
	return g.Token != "" && g.Repository != "" && g.PRNumber != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output:  OutputConfig{Format: "table"},
		Logging: LoggingConfig{Level: "warn"},
		GitHub:  GitHubConfig{APIURL: "https://api.github.com"},
	}
}

// Load builds the effective configuration for a scan rooted at root.
func Load(root string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables. DEAD_SNAKES_JSON and
// DEAD_SNAKES_PR are kept for compatibility with earlier releases of
// the scanner.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("DEAD_SNAKES")
	v.AutomaticEnv()

	if isTruthy(v.GetString("json")) {
		cfg.Output.Format = "json"
	}
	if isTruthy(v.GetString("pr")) {
		cfg.Output.PRComment = true
	}
	if format := v.GetString("format"); format != "" {
		cfg.Output.Format = format
	}
	if level := v.GetString("log_level"); level != "" {
		cfg.Logging.Level = level
	}
	if isTruthy(v.GetString("history")) {
		cfg.History.Enabled = true
	}

	gh := viper.New()
	gh.AutomaticEnv()
	if token := gh.GetString("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if repo := gh.GetString("GITHUB_REPOSITORY"); repo != "" {
		cfg.GitHub.Repository = repo
	}
	if pr := gh.GetString("GITHUB_PR_NUMBER"); pr != "" {
		cfg.GitHub.PRNumber = pr
	}
	if url := gh.GetString("GITHUB_API_URL"); url != "" {
		cfg.GitHub.APIURL = url
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true":
		return true
	}
	return false
}
