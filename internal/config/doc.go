// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config provides configuration loading and management for parley.

Configuration lives in TOML at ~/.parley/config.toml, with sensible
defaults, environment variable overrides, and validation. A small
fsnotify-based watcher re-loads the file on change so a running session
picks up edits without restarting.

Precedence, lowest to highest: built-in defaults, the config file,
PARLEY_* environment variables.
*/
package config
