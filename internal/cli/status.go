// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - the status command.
//
// Command: status
// Aliases: s
//
// Sections:
//   Session:  stored server, username, and when the session was saved
//   Board:    reachability, site name, and the message of the day

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/session"
)

// HandleStatus reports the stored session and, when reachable, the board's
// site info and MOTD.
func HandleStatus(cfg *config.Config, args Args) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := session.NewStore(dir)

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(titleStyle.Render("parley status"))
	fmt.Println(separatorStyle.Render(separator))
	fmt.Println()

	fmt.Println(sectionStyle.Render("Session"))
	sess, err := store.Load()
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		fmt.Printf("  %s\n", warnStyle.Render("Not logged in. Run `parley login`."))
		fmt.Println()
		return nil
	case errors.Is(err, session.ErrCorrupt):
		fmt.Printf("  %s\n", errStyle.Render("Session file unreadable. Run `parley login` again."))
		fmt.Println()
		return nil
	case err != nil:
		return err
	}

	fmt.Printf("  %s%s\n", labelStyle.Render("Server:"), valueStyle.Render(sess.Server))
	fmt.Printf("  %s%s\n", labelStyle.Render("User:"), valueStyle.Render("@"+sess.Username))
	fmt.Printf("  %s%s\n", labelStyle.Render("Signed in:"), valueStyle.Render(sess.SavedAt.Local().Format("2006-01-02 15:04")))
	fmt.Println()

	fmt.Println(sectionStyle.Render("Board"))
	client := api.NewClient(sess.Server, sess.Token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	site, err := client.Site(ctx)
	if err != nil {
		msg := "unreachable"
		if errors.Is(err, api.ErrUnauthorized) {
			msg = "session expired; run `parley login` again"
		}
		fmt.Printf("  %s%s\n", labelStyle.Render("Status:"), errStyle.Render(msg))
		fmt.Println()
		return nil
	}

	fmt.Printf("  %s%s\n", labelStyle.Render("Status:"), okStyle.Render("reachable"))
	fmt.Printf("  %s%s\n", labelStyle.Render("Site:"), valueStyle.Render(site.Name))
	if motd := renderMOTD(site.Motd); motd != "" {
		fmt.Println()
		fmt.Print(motd)
	}
	fmt.Println()
	return nil
}

// renderMOTD renders the board's markdown MOTD for the terminal. Plain text
// comes back when rendering fails.
func renderMOTD(motd string) string {
	motd = strings.TrimSpace(motd)
	if motd == "" {
		return ""
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return motd + "\n"
	}
	rendered, err := renderer.Render(motd)
	if err != nil {
		return motd + "\n"
	}
	return rendered
}
