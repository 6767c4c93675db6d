// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// board.go - the central Bubble Tea model for the parley board.

package board

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/ui/components"
	"github.com/parleyhq/parley/internal/ui/composer"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/upload"
)

// =============================================================================
// BOARD STATE
// =============================================================================

// State is the active screen.
type State int

const (
	StateCategories State = iota // category list
	StateTopics                  // topic list within a category
	StateReader                  // one topic with its replies
	StateCompose                 // writing a topic or reply
)

// composeKind says what the compose screen will post.
type composeKind int

const (
	composeTopic composeKind = iota
	composeReply
)

// imageItem is one image block collected from the open topic, in reading
// order, for the lightbox to cycle through.
type imageItem struct {
	Alt  string
	Full string
}

// =============================================================================
// BOARD MODEL
// =============================================================================

// Config carries the board's collaborators.
type Config struct {
	Theme  *styles.Theme
	Config *config.Config
	Client *api.Client
	Marks  *history.Store // nil disables unread markers
	Member api.Member
}

// Model is the Bubble Tea model for the board.
type Model struct {
	// State
	state State

	// Collaborators
	theme  *styles.Theme
	conf   *config.Config
	client *api.Client
	marks  *history.Store
	member api.Member

	// Dimensions
	width  int
	height int

	// Loading
	loading bool
	spin    components.Spinner

	// Board data
	site     api.Site
	haveSite bool

	categories []api.Category
	catIndex   int

	category   api.Category
	topics     []api.Topic
	topicIndex int
	page       int
	hasMore    bool
	unread     map[int64]history.Mark

	// Reader
	topicID      int64 // the topic we are fetching or showing
	topic        api.Topic
	reader       viewport.Model
	replyOffsets []int // line index of each reply's divider in the viewport
	images       []imageItem
	imageIndex   int
	lightbox     Lightbox

	// Compose
	composeKind  composeKind
	titleInput   textinput.Model
	titleFocused bool
	composer     composer.Model
	posting      bool

	// UI components
	renderer *components.BlockRenderer
	status   *components.StatusBar
	banner   *components.ErrorBanner
	keys     KeyMap
}

// New creates the board model.
func New(cfg Config) Model {
	conf := cfg.Config
	if conf == nil {
		conf = config.Default()
	}
	theme := cfg.Theme
	if theme == nil {
		theme = styles.NewTheme(conf.UI.Accent)
	}

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "topic title"
	title.CharLimit = 200

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var source *suggest.Source
	var pipeline *upload.Pipeline
	if cfg.Client != nil {
		source = suggest.NewSource(cfg.Client, &suggest.SourceConfig{
			Timeout:     conf.SuggestionTimeout(),
			Limit:       conf.Suggestions.Limit,
			MinInterval: conf.SuggestionInterval(),
			Burst:       conf.Suggestions.Burst,
		})
		pipeline = upload.NewPipeline(cfg.Client, &upload.Config{
			MaxBytes:     conf.MaxUploadBytes(),
			AllowedTypes: conf.Composer.AllowedImageTypes,
			Timeout:      conf.UploadTimeout(),
		})
	}

	comp := composer.New(composer.Config{
		Theme:         theme,
		Source:        source,
		Pipeline:      pipeline,
		MinQueryRunes: conf.Suggestions.MinQueryRunes,
		Preview:       conf.Composer.Preview,
		Placeholder:   "write here, @ to mention, ctrl+o to attach an image",
	})

	status := components.NewStatusBar(theme)
	status.SetBoard("parley")
	status.SetMember(cfg.Member.Username)

	m := Model{
		state:      StateCategories,
		theme:      theme,
		conf:       conf,
		client:     cfg.Client,
		marks:      cfg.Marks,
		member:     cfg.Member,
		width:      80,
		height:     24,
		loading:    true,
		spin:       components.NewFetchSpinner("board"),
		unread:     make(map[int64]history.Mark),
		reader:     vp,
		titleInput: title,
		composer:   comp,
		renderer:   components.NewBlockRenderer(theme),
		status:     status,
		banner:     components.NewErrorBanner(theme),
		keys:       DefaultKeyMap(),
	}
	m.status.SetShortcuts(m.keys.shortcutsFor(m.state))
	return m
}

// Init fetches the site banner and the category list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSite(), m.fetchCategories(), m.spin.Start())
}

// State returns the active screen, for the app shell and tests.
func (m Model) State() State {
	return m.state
}

// =============================================================================
// LAYOUT
// =============================================================================

// setSize propagates a terminal resize to the theme and every component.
func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	m.status.SetWidth(width)
	m.renderer.SetWidth(width - 4)
	m.composer.SetSize(width)

	bw := width - 8
	if bw > 64 {
		bw = 64
	}
	if bw < 20 {
		bw = 20
	}
	m.banner.SetWidth(bw)

	m.titleInput.Width = width - 16

	m.reader.Width = width
	m.reader.Height = m.contentHeight()
	if m.state == StateReader {
		m.buildReader()
	}
}

// contentHeight is the vertical space left for the main content after the
// header and status area.
func (m Model) contentHeight() int {
	// header line, blank, status bar, shortcuts line
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}
