// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - the login, logout, and status commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/session"
)

// HandleLogin signs in to a board and stores the session.
func HandleLogin(cfg *config.Config, args Args) error {
	parser := NewArgParser(args.Raw)

	server := args.Server
	if server == "" {
		server = cfg.Server.BaseURL
	}
	if server == "" {
		var err error
		server, err = promptLine("Server URL: ")
		if err != nil {
			return err
		}
	}
	server, err := normalizeServerURL(server)
	if err != nil {
		return err
	}

	username := parser.Flag("user")
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password is required")
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       server,
		Timeout:       cfg.ServerTimeout(),
		UploadTimeout: cfg.UploadTimeout(),
	})

	ctx := context.Background()
	sess, err := client.Login(ctx, username, password, "")
	if errors.Is(err, api.ErrTOTPRequired) {
		code, codeErr := totpCode(parser)
		if codeErr != nil {
			return codeErr
		}
		sess, err = client.Login(ctx, username, password, code)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	dir, err := config.EnsureDir()
	if err != nil {
		return err
	}
	store := session.NewStore(dir)
	if err := store.Save(session.Session{
		Server:   server,
		Username: sess.Member.Username,
		Token:    sess.Token,
	}); err != nil {
		return fmt.Errorf("could not store session: %w", err)
	}

	// Remember the server so the next run does not need --server.
	if cfg.Server.BaseURL != server {
		cfg.Server.BaseURL = server
		if err := config.Save(cfg); err != nil {
			logging.Warn("could not save config", "error", err)
		}
	}

	if !args.Quiet {
		name := sess.Member.DisplayName
		if name == "" {
			name = sess.Member.Username
		}
		fmt.Printf("Logged in to %s as %s (@%s)\n",
			valueStyle.Render(server),
			okStyle.Render(name),
			sess.Member.Username)
	}
	return nil
}

// totpCode resolves the second factor: from a --totp-secret flag when
// scripted, otherwise by prompting for the code itself.
func totpCode(parser *ArgParser) (string, error) {
	if secret := parser.Flag("totp-secret"); secret != "" {
		code, err := totp.GenerateCode(normalizeTOTPSecret(secret), time.Now())
		if err != nil {
			return "", fmt.Errorf("invalid TOTP secret: %w", err)
		}
		return code, nil
	}

	code, err := promptLine("Two-factor code: ")
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", errors.New("two-factor code is required")
	}
	return code, nil
}

// normalizeTOTPSecret uppercases and strips the spacing authenticator apps
// display secrets with.
func normalizeTOTPSecret(secret string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secret), " ", ""))
}

// normalizeServerURL fills in a missing scheme and validates the result.
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(strings.TrimSuffix(server, "/"))
	if server == "" {
		return "", errors.New("server URL is required")
	}
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("invalid server URL: missing host")
	}
	return server, nil
}

// HandleLogout ends the server-side session and clears the stored one.
func HandleLogout(cfg *config.Config, args Args) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := session.NewStore(dir)

	sess, err := store.Load()
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Println("Not logged in.")
		return nil
	case errors.Is(err, session.ErrCorrupt):
		// Nothing usable to revoke server-side; just drop the file.
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Removed unreadable session.")
		return nil
	case err != nil:
		return err
	}

	// Best-effort revocation: the local session goes away regardless.
	client := api.NewClient(sess.Server, sess.Token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Logout(ctx); err != nil {
		logging.Warn("server-side logout failed", "error", err)
		if !args.Quiet {
			fmt.Println(warnStyle.Render("could not reach the board; the stored session was cleared anyway"))
		}
	}

	if err := store.Clear(); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Printf("Logged out of %s.\n", sess.Server)
	}
	return nil
}
