// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// keys.go - keyboard bindings for the board screens.

package board

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/parleyhq/parley/internal/ui/components"
)

// KeyMap defines the keyboard bindings shared by the board screens. Which
// bindings are live depends on the active screen; the status bar shows the
// relevant subset.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Back     key.Binding
	Quit     key.Binding
	Refresh  key.Binding
	NewTopic key.Binding
	Reply    key.Binding
	Image    key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Post     key.Binding
	Field    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "left", "h"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NewTopic: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new topic"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
		Image: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "view image"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev page"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Post: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "post"),
		),
		Field: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch field"),
		),
	}
}

// shortcutsFor returns the status-bar shortcut hints for a screen.
func (k KeyMap) shortcutsFor(state State) []components.Shortcut {
	switch state {
	case StateCategories:
		return []components.Shortcut{
			{Key: "up/down", Desc: "move"},
			{Key: "enter", Desc: "open"},
			{Key: "r", Desc: "refresh"},
			{Key: "q", Desc: "quit"},
		}
	case StateTopics:
		return []components.Shortcut{
			{Key: "up/down", Desc: "move"},
			{Key: "enter", Desc: "read"},
			{Key: "n", Desc: "new topic"},
			{Key: "[/]", Desc: "page"},
			{Key: "esc", Desc: "back"},
		}
	case StateReader:
		return []components.Shortcut{
			{Key: "up/down", Desc: "scroll"},
			{Key: "r", Desc: "reply"},
			{Key: "o", Desc: "view image"},
			{Key: "esc", Desc: "back"},
		}
	case StateCompose:
		return []components.Shortcut{
			{Key: "ctrl+s", Desc: "post"},
			{Key: "ctrl+o", Desc: "attach image"},
			{Key: "@", Desc: "mention"},
			{Key: "esc", Desc: "cancel"},
		}
	default:
		return nil
	}
}
