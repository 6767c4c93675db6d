// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command-line parsing and dispatch for parley.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (overridden at build time via -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the top-level CLI command to execute.
type Command int

const (
	CmdBoard Command = iota // open the TUI (default)
	CmdLogin
	CmdLogout
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server  string // --server overrides the configured board URL
	Quiet   bool
	Verbose bool

	// Raw args remaining after the command word and global flags.
	Raw []string
}

const usageText = `parley - a terminal client for community boards

Parley signs in to a board, browses categories and topics, and composes
posts with @mentions, inline markup, and image attachments, without
leaving the terminal.

Usage:
  parley                     Open the board (default)
  parley login               Sign in and store a session
  parley logout              Sign out and clear the stored session
  parley status, s           Show session and board status
  parley version             Show version information
  parley help                Show this help

Login Flags:
  --user NAME         Username (otherwise prompted)
  --totp-secret KEY   Derive the two-factor code from a base32 TOTP secret
                      (for scripted logins; otherwise prompted when the
                      board asks for a code)

Global Flags:
  --server URL        Board URL (otherwise from config or prompted at login)
  -q, --quiet         Minimal output
  -v, --verbose       Debug logging

Keys (board):
  j/k, arrows         Move selection / scroll
  enter               Open selection
  esc                 Back, or dismiss the open popup
  r                   Reply to the open topic
  n                   New topic in the open category
  tab or enter        Accept the highlighted mention suggestion
  ctrl+o              Attach an image to the draft
  ctrl+s              Submit the draft
  q, ctrl+c           Quit

Files:
  ~/.parley/config.toml    Configuration
  ~/.parley/session.json   Stored session (token encrypted at rest)
  ~/.parley/history.db     Read-position history
  ~/.parley/parley.log     Log file

Examples:
  parley login --server https://boards.example.net
  parley status
  PARLEY_SERVER=https://boards.example.net parley

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("parley version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and its arguments.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

func parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdBoard, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "board", "tui":
		return CmdBoard, args

	case "login", "signin":
		return CmdLogin, args

	case "logout", "signout":
		return CmdLogout, args

	case "status", "s":
		return CmdStatus, args

	case "version", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown word: keep it visible to the handler and fall back to
		// help rather than silently opening the board.
		args.Raw = remaining
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--server":
			if i+1 < len(argv) {
				i++
				args.Server = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--server=") {
				args.Server = strings.TrimPrefix(arg, "--server=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, args
}
