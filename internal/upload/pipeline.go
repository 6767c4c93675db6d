// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload validates and ships composer image attachments.
//
// The pipeline reads a local file, enforces the board's size ceiling and
// raster-type allow-list before any bytes leave the machine, uploads the
// file as multipart form data, and hands back the markup literal the
// composer splices at the cursor offset it captured when the attempt
// started. Every attempt carries a fresh ID so a result that arrives
// after the composer moved on can be recognized and dropped.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/markup"
)

// Validation failures. Both are user-facing and happen before any network
// call; callers wrap them with the specifics.
var (
	ErrTooLarge        = errors.New("image is larger than the board allows")
	ErrUnsupportedType = errors.New("not a supported image type")
)

// DefaultMaxBytes is the upload size ceiling when the board's operator
// has not configured one.
const DefaultMaxBytes = 10 << 20 // 10 MiB

// DefaultAllowedTypes is the raster allow-list. SVG and other scriptable
// formats stay out deliberately.
var DefaultAllowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// sniffLen is how many leading bytes content-type detection needs.
const sniffLen = 512

// Uploader is the slice of the board client the pipeline needs. Tests
// substitute a stub.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, content io.Reader) (*api.UploadedImage, error)
}

// ResultMsg reports one finished attempt back to the event loop. At is
// the cursor offset captured when the attempt started; on success the
// composer splices Literal there, clamped to the current buffer. Err
// carries a validation or transport failure and means the buffer must not
// be touched.
type ResultMsg struct {
	AttemptID string
	At        int
	Image     api.UploadedImage
	Literal   string
	Err       error
}

// Config tunes the pipeline.
type Config struct {
	// MaxBytes is the size ceiling (default: DefaultMaxBytes).
	MaxBytes int64

	// AllowedTypes is the MIME allow-list (default: DefaultAllowedTypes).
	AllowedTypes []string

	// Timeout bounds one attempt end to end (default: 90s).
	Timeout time.Duration
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxBytes:     DefaultMaxBytes,
		AllowedTypes: DefaultAllowedTypes,
		Timeout:      90 * time.Second,
	}
}

// Pipeline validates and uploads composer image attachments.
type Pipeline struct {
	uploader Uploader
	maxBytes int64
	allowed  map[string]bool
	timeout  time.Duration
}

// NewPipeline creates a pipeline over the given uploader.
func NewPipeline(uploader Uploader, cfg *Config) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = DefaultAllowedTypes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}

	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &Pipeline{
		uploader: uploader,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		timeout:  cfg.Timeout,
	}
}

// MaxBytes returns the configured size ceiling.
func (p *Pipeline) MaxBytes() int64 { return p.maxBytes }

// Start begins one upload attempt for the file at path, remembering the
// cursor offset the composer captured. It returns the attempt ID and the
// command that performs the work off the event loop; the command always
// delivers exactly one ResultMsg carrying the same ID.
func (p *Pipeline) Start(path string, capturedAt int) (string, tea.Cmd) {
	id := uuid.NewString()
	cmd := func() tea.Msg {
		img, literal, err := p.run(path)
		if err != nil {
			return ResultMsg{AttemptID: id, At: capturedAt, Err: err}
		}
		return ResultMsg{AttemptID: id, At: capturedAt, Image: *img, Literal: literal}
	}
	return id, cmd
}

// Validate applies the size and type rules. It is pure so the rules can
// be tested without files; run does the I/O and calls it.
func (p *Pipeline) Validate(size int64, contentType string) error {
	if size > p.maxBytes {
		return fmt.Errorf("%w: %s is over the %s limit",
			ErrTooLarge, formatMiB(size), formatMiB(p.maxBytes))
	}
	base, _, _ := strings.Cut(contentType, ";")
	if !p.allowed[strings.ToLower(strings.TrimSpace(base))] {
		return fmt.Errorf("%w: detected %s", ErrUnsupportedType, base)
	}
	return nil
}

func (p *Pipeline) run(path string) (*api.UploadedImage, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot open image: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("cannot stat image: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("cannot read image: %w", err)
	}
	if err := p.Validate(info.Size(), http.DetectContentType(head[:n])); err != nil {
		return nil, "", err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("cannot rewind image: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	img, err := p.uploader.UploadImage(ctx, filepath.Base(path), file)
	if err != nil {
		return nil, "", err
	}

	literal := markup.ImageLiteral(altFromFilename(path), img.ThumbRef, img.FullRef) + "\n"
	return img, literal, nil
}

// altFromFilename derives alt text from the file's base name, dropping
// the extension and any rune that would break the image literal.
func altFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ']', '\n', '\r':
			return -1
		}
		return r
	}, base)
	if base == "" {
		return "image"
	}
	return base
}

func formatMiB(n int64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}
