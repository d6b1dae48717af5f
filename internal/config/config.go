// Copyright (c) 2025 Lamachat Authors
// SPDX-License-Identifier: MIT

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/lamachat/lamachat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lamachat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Ollama service configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Archive (saved conversations) configuration
	Archive ArchiveConfig `toml:"archive" json:"archive"`

	// Search index configuration
	Index IndexConfig `toml:"index" json:"index"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains local Ollama configuration.
type OllamaConfig struct {
	// URL is the base URL of the Ollama server
	URL string `toml:"url" json:"url"`
	// Model is the default model to chat with
	Model string `toml:"model" json:"model"`
	// TimeoutSecs is the timeout for non-streaming requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// ArchiveConfig contains saved-conversation storage configuration.
type ArchiveConfig struct {
	// Dir is the directory holding transcript files (empty = ~/.lamachat/chats)
	Dir string `toml:"dir" json:"dir"`
}

// IndexConfig contains search index configuration.
type IndexConfig struct {
	// Enabled controls whether the full-text search index is maintained
	Enabled bool `toml:"enabled" json:"enabled"`
	// DatabasePath is the SQLite database location (empty = ~/.lamachat/search.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
	// Watch keeps the index fresh when other processes touch the archive
	Watch bool `toml:"watch" json:"watch"`
	// WatchDebounceMs is the debounce window for transcript change events
	WatchDebounceMs int `toml:"watch_debounce_ms" json:"watch_debounce_ms"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// RenderMarkdown renders replies through the markdown renderer
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// HistoryFile is where prompt line history is kept (empty = ~/.lamachat/history)
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "llama3.2:latest",
			TimeoutSecs: 60,
		},

		Archive: ArchiveConfig{
			Dir: "",
		},

		Index: IndexConfig{
			Enabled:         true,
			DatabasePath:    "",
			Watch:           true,
			WatchDebounceMs: 500,
		},

		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			HistoryFile:    "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lamachat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lamachat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ArchiveDir resolves the archive directory, falling back to the default
// location when unset.
func (c *Config) ArchiveDir() (string, error) {
	if c.Archive.Dir != "" {
		return c.Archive.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chats"), nil
}

// IndexDatabasePath resolves the search database path, falling back to the
// default location when unset.
func (c *Config) IndexDatabasePath() (string, error) {
	if c.Index.DatabasePath != "" {
		return c.Index.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "search.db"), nil
}

// HistoryFilePath resolves the prompt history file, falling back to the
// default location when unset.
func (c *Config) HistoryFilePath() (string, error) {
	if c.UI.HistoryFile != "" {
		return c.UI.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	// Seed with defaults so fields the file omits keep their default values.
	// fillDefaults only restores empty strings and zero ints, not booleans.
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}

	if cfg.Index.WatchDebounceMs == 0 {
		cfg.Index.WatchDebounceMs = defaults.Index.WatchDebounceMs
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# lamachat configuration file")
	fmt.Fprintln(file, "# Generated by lamachat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate Ollama URL
	if c.Ollama.URL != "" {
		if u, err := url.Parse(c.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Ollama.URL),
			})
		}
	}

	if c.Ollama.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Index.WatchDebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "index.watch_debounce_ms",
			Message: "must be non-negative",
		})
	}

	// Validate theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LAMACHAT_MODEL: overrides ollama.model
//   - LAMACHAT_OLLAMA_URL: overrides ollama.url
//   - LAMACHAT_ARCHIVE_DIR: overrides archive.dir
//   - LAMACHAT_NO_INDEX: set to "1" or "true" to disable the search index
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("LAMACHAT_MODEL"); model != "" {
		c.Ollama.Model = model
	}

	if url := os.Getenv("LAMACHAT_OLLAMA_URL"); url != "" {
		c.Ollama.URL = url
	}

	if dir := os.Getenv("LAMACHAT_ARCHIVE_DIR"); dir != "" {
		c.Archive.Dir = dir
	}

	if noIndex := os.Getenv("LAMACHAT_NO_INDEX"); noIndex != "" {
		if noIndex == "1" || strings.ToLower(noIndex) == "true" {
			c.Index.Enabled = false
		}
	}
}

// =============================================================================
// GLOBAL CONFIGURATION
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// Load errors fall back to defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		globalConfigMu.Lock()
		defer globalConfigMu.Unlock()
		if globalConfig != nil {
			// Installed earlier through SetGlobal.
			return
		}
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
