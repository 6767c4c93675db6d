// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parley configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Composer settings
	Composer ComposerConfig `toml:"composer"`

	// Suggestion fetch settings
	Suggestions SuggestionsConfig `toml:"suggestions"`

	// UI settings
	UI UIConfig `toml:"ui"`

	// Log settings
	Log LogConfig `toml:"log"`
}

// ServerConfig identifies the board and bounds requests against it.
type ServerConfig struct {
	// BaseURL is the board's root URL, e.g. "https://boards.example.net".
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds ordinary API calls (default: 15).
	TimeoutSecs int `toml:"timeout_secs"`
	// UploadTimeoutSecs bounds image uploads (default: 60).
	UploadTimeoutSecs int `toml:"upload_timeout_secs"`
}

// ComposerConfig tunes the editing surface.
type ComposerConfig struct {
	// MaxUploadMiB is the image size ceiling in MiB (default: 10). The
	// board enforces its own ceiling server-side; this one saves the
	// round trip.
	MaxUploadMiB int `toml:"max_upload_mib"`
	// AllowedImageTypes is the raster MIME allow-list.
	AllowedImageTypes []string `toml:"allowed_image_types"`
	// Preview toggles the live markup preview pane (default: true).
	Preview bool `toml:"preview"`
}

// SuggestionsConfig tunes mention autocompletion.
type SuggestionsConfig struct {
	// MinQueryRunes is how many runes after the @ trigger a fetch
	// (default: 1).
	MinQueryRunes int `toml:"min_query_runes"`
	// FetchTimeoutSecs bounds one suggestion fetch (default: 8).
	FetchTimeoutSecs int `toml:"fetch_timeout_secs"`
	// MinIntervalMS paces fetches once the burst is spent (default: 100).
	MinIntervalMS int `toml:"min_interval_ms"`
	// Burst is how many fetches may go out back-to-back (default: 3).
	Burst int `toml:"burst"`
	// Limit is the maximum number of candidates shown (default: 8).
	Limit int `toml:"limit"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Accent is the highlight color, any lipgloss-accepted color string.
	Accent string `toml:"accent"`
	// CompactLists drops topic excerpts from list views.
	CompactLists bool `toml:"compact_lists"`
	// ShowHelpBar toggles the keybinding bar at the bottom.
	ShowHelpBar bool `toml:"show_help_bar"`
}

// LogConfig controls the file logger. Logs never go to the terminal; that
// would corrupt the TUI.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `toml:"level"`
	// File is the log path (default: ~/.parley/parley.log).
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TimeoutSecs:       15,
			UploadTimeoutSecs: 60,
		},
		Composer: ComposerConfig{
			MaxUploadMiB:      10,
			AllowedImageTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
			Preview:           true,
		},
		Suggestions: SuggestionsConfig{
			MinQueryRunes:    1,
			FetchTimeoutSecs: 8,
			MinIntervalMS:    100,
			Burst:            3,
			Limit:            8,
		},
		UI: UIConfig{
			Accent:      "#7aa2f7",
			ShowHelpBar: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults fills zero values with defaults, so a sparse config file
// behaves like the full one.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Server.UploadTimeoutSecs <= 0 {
		c.Server.UploadTimeoutSecs = def.Server.UploadTimeoutSecs
	}
	if c.Composer.MaxUploadMiB <= 0 {
		c.Composer.MaxUploadMiB = def.Composer.MaxUploadMiB
	}
	if len(c.Composer.AllowedImageTypes) == 0 {
		c.Composer.AllowedImageTypes = def.Composer.AllowedImageTypes
	}
	if c.Suggestions.MinQueryRunes <= 0 {
		c.Suggestions.MinQueryRunes = def.Suggestions.MinQueryRunes
	}
	if c.Suggestions.FetchTimeoutSecs <= 0 {
		c.Suggestions.FetchTimeoutSecs = def.Suggestions.FetchTimeoutSecs
	}
	if c.Suggestions.MinIntervalMS <= 0 {
		c.Suggestions.MinIntervalMS = def.Suggestions.MinIntervalMS
	}
	if c.Suggestions.Burst <= 0 {
		c.Suggestions.Burst = def.Suggestions.Burst
	}
	if c.Suggestions.Limit <= 0 {
		c.Suggestions.Limit = def.Suggestions.Limit
	}
	if c.UI.Accent == "" {
		c.UI.Accent = def.UI.Accent
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the parley data directory (~/.parley).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the parley data directory exists.
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// ensureSecurePermissions tightens the config file to owner-only. It may
// carry a session server URL and is nobody else's business.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, falling back to defaults when it does not
// exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file from an explicit location.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not secure %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config atomically to the default location.
func Save(cfg *Config) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.toml")

	tmp, err := os.CreateTemp(dir, "config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies PARLEY_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PARLEY_SERVER"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("PARLEY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PARLEY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("server.base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server.base_url: scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("server.base_url: missing host")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	for _, t := range c.Composer.AllowedImageTypes {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(t)), "image/") {
			return fmt.Errorf("composer.allowed_image_types: %q is not an image type", t)
		}
	}

	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ServerTimeout returns the request timeout as a duration.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// UploadTimeout returns the upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Server.UploadTimeoutSecs) * time.Second
}

// MaxUploadBytes returns the composer's upload ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Composer.MaxUploadMiB) << 20
}

// SuggestionTimeout returns the fetch timeout as a duration.
func (c *Config) SuggestionTimeout() time.Duration {
	return time.Duration(c.Suggestions.FetchTimeoutSecs) * time.Second
}

// SuggestionInterval returns the fetch pacing interval as a duration.
func (c *Config) SuggestionInterval() time.Duration {
	return time.Duration(c.Suggestions.MinIntervalMS) * time.Millisecond
}

// LogPath returns the log file location, defaulting under the parley
// directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "parley.log"), nil
}
