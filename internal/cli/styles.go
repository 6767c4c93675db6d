// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - lipgloss styles for non-TUI command output.

package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // cyan

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")) // white

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // light gray
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")) // green

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // yellow

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
