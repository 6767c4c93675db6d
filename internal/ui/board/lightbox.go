// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package board

// Lightbox holds the full-resolution ref of the image the member is
// looking at, or nothing. The reader renders thumbnails inline; opening a
// block promotes its full ref into the lightbox overlay. No history, no
// zoom.
type Lightbox struct {
	alt  string
	ref  string
	open bool
}

// Open shows the overlay for one image.
func (l *Lightbox) Open(alt, fullRef string) {
	l.alt = alt
	l.ref = fullRef
	l.open = true
}

// Dismiss clears the overlay.
func (l *Lightbox) Dismiss() {
	l.alt = ""
	l.ref = ""
	l.open = false
}

// Visible reports whether the overlay is showing.
func (l Lightbox) Visible() bool {
	return l.open
}

// Alt returns the open image's alt text, empty when closed.
func (l Lightbox) Alt() string {
	return l.alt
}

// Ref returns the open image's full-resolution ref, empty when closed.
func (l Lightbox) Ref() string {
	return l.ref
}
