// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15, cfg.Server.TimeoutSecs)
	assert.Equal(t, 60, cfg.Server.UploadTimeoutSecs)
	assert.Equal(t, 10, cfg.Composer.MaxUploadMiB)
	assert.True(t, cfg.Composer.Preview)
	assert.Contains(t, cfg.Composer.AllowedImageTypes, "image/png")
	assert.Equal(t, 1, cfg.Suggestions.MinQueryRunes)
	assert.Equal(t, 8, cfg.Suggestions.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.UI.Accent)

	require.NoError(t, cfg.Validate())
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, 15, cfg.Server.TimeoutSecs)
	assert.Equal(t, 10, cfg.Composer.MaxUploadMiB)
	assert.Equal(t, 3, cfg.Suggestions.Burst)
	assert.Equal(t, 100, cfg.Suggestions.MinIntervalMS)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.TimeoutSecs = 30
	cfg.Suggestions.Limit = 4
	cfg.Log.Level = "debug"
	cfg.SetDefaults()

	assert.Equal(t, 30, cfg.Server.TimeoutSecs)
	assert.Equal(t, 4, cfg.Suggestions.Limit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Server.TimeoutSecs)
}

func TestLoadFromPathSparseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "https://boards.example.net"

[suggestions]
limit = 5
`), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://boards.example.net", cfg.Server.BaseURL)
	assert.Equal(t, 5, cfg.Suggestions.Limit)
	// Unset values come from defaults.
	assert.Equal(t, 15, cfg.Server.TimeoutSecs)
	assert.Equal(t, 8, cfg.Suggestions.FetchTimeoutSecs)
}

func TestLoadFromPathBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nbase_url ="), 0o600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPathFixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_SERVER", "https://env.example.net")
	t.Setenv("PARLEY_LOG_LEVEL", "debug")
	t.Setenv("PARLEY_LOG_FILE", "/tmp/parley-test.log")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.net", cfg.Server.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/parley-test.log", cfg.Log.File)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
base_url = "https://file.example.net"
`), 0o600))
	t.Setenv("PARLEY_SERVER", "https://env.example.net")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.net", cfg.Server.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty base url ok", func(c *Config) { c.Server.BaseURL = "" }, false},
		{"https url", func(c *Config) { c.Server.BaseURL = "https://b.example.net" }, false},
		{"http url", func(c *Config) { c.Server.BaseURL = "http://localhost:8080" }, false},
		{"ftp url", func(c *Config) { c.Server.BaseURL = "ftp://b.example.net" }, true},
		{"no host", func(c *Config) { c.Server.BaseURL = "https://" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"warn level", func(c *Config) { c.Log.Level = "warn" }, false},
		{"non-image mime", func(c *Config) { c.Composer.AllowedImageTypes = []string{"text/html"} }, true},
		{"image mime", func(c *Config) { c.Composer.AllowedImageTypes = []string{"image/avif"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15*time.Second, cfg.ServerTimeout())
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 8*time.Second, cfg.SuggestionTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.SuggestionInterval())
}

func TestLogPathExplicit(t *testing.T) {
	cfg := Default()
	cfg.Log.File = "/var/log/parley.log"

	path, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/parley.log", path)
}

func TestLogPathDefault(t *testing.T) {
	cfg := Default()

	path, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "parley.log", filepath.Base(path))
	assert.Contains(t, path, ".parley")
}

func TestWatcherSeesRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	changes := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config, err error) {
		if err == nil {
			select {
			case changes <- cfg:
			default:
			}
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	// Atomic save: write a temp file and rename it into place, the same
	// way Save does.
	tmp := filepath.Join(dir, "config-next.toml")
	require.NoError(t, os.WriteFile(tmp, []byte(`
[suggestions]
limit = 3
`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case cfg := <-changes:
		assert.Equal(t, 3, cfg.Suggestions.Limit)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the config change")
	}
}
