// parley - a terminal client for community discussion boards.
//
// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/cli"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/ui/board"
	"github.com/parleyhq/parley/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	cfg := loadConfig(args)

	switch cmd {
	case cli.CmdLogin:
		exitOn(cli.HandleLogin(cfg, args))
	case cli.CmdLogout:
		exitOn(cli.HandleLogout(cfg, args))
	case cli.CmdStatus:
		exitOn(cli.HandleStatus(cfg, args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runBoard(cfg)
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies CLI overrides on top. A
// broken config file is fatal; failing loud beats silently ignoring the
// member's settings.
func loadConfig(args cli.Args) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg
}

// runBoard wires the session, client, and stores together and runs the TUI.
func runBoard(cfg *config.Config) {
	// Logging goes to a file; stdout belongs to the TUI.
	if path, err := cfg.LogPath(); err == nil {
		if closeLog, err := logging.Init(path, cfg.Log.Level); err == nil {
			defer closeLog()
		}
	}

	dir, err := config.EnsureDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sess, err := session.NewStore(dir).Load()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotLoggedIn):
			fmt.Fprintln(os.Stderr, "Not logged in. Run `parley login` first.")
		case errors.Is(err, session.ErrCorrupt):
			fmt.Fprintln(os.Stderr, "Stored session is unreadable. Run `parley login` again.")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	// --server / PARLEY_SERVER override the server the session was stored
	// for; the token may well be invalid there, but that is the member's
	// call to make.
	server := cfg.Server.BaseURL
	if server == "" {
		server = sess.Server
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       server,
		Token:         sess.Token,
		Timeout:       cfg.ServerTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
	})

	// Read history is best-effort: browsing works without unread markers.
	marks, err := history.Open(history.DefaultConfig(dir))
	if err != nil {
		logging.Warn("read history unavailable", "error", err)
		marks = nil
	} else {
		defer marks.Close()
		go pruneHistory(marks)
	}

	m := board.New(board.Config{
		Theme:  styles.NewTheme(cfg.UI.Accent),
		Config: cfg,
		Client: client,
		Marks:  marks,
		Member: api.Member{Username: sess.Username},
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Edits to config.toml land in the running board as a reload message.
	if path, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(path, func(next *config.Config, err error) {
			if err != nil {
				logging.Warn("config reload failed", "error", err)
				return
			}
			p.Send(board.ConfigReloadMsg{Config: next})
		})
		if err == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	logging.Info("board starting",
		"server", server, "member", sess.Username, "version", Version)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running parley: %v\n", err)
		os.Exit(1)
	}
}

// markRetention is how long a topic's read mark survives without being
// refreshed. Topics untouched for this long read as new again, which is
// what a returning member expects anyway.
const markRetention = 365 * 24 * time.Hour

// pruneHistory trims stale read marks off the startup path.
func pruneHistory(marks *history.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := marks.Prune(ctx, markRetention)
	if err != nil {
		logging.Warn("history prune failed", "error", err)
		return
	}
	if n > 0 {
		logging.Debug("pruned read marks", "count", n)
	}
}
