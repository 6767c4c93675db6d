// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import "testing"

func TestSplice(t *testing.T) {
	tests := []struct {
		name        string
		buffer      string
		start, end  int
		replacement string
		wantBuffer  string
		wantCursor  int
	}{
		{
			name:   "mention commit",
			buffer: "hi @jo", start: 3, end: 6, replacement: "@john ",
			wantBuffer: "hi @john ", wantCursor: 9,
		},
		{
			name:   "insert into empty buffer",
			buffer: "", start: 0, end: 0, replacement: "![image](thumb.png|full.png)\n",
			wantBuffer: "![image](thumb.png|full.png)\n", wantCursor: 29,
		},
		{
			name:   "delete range",
			buffer: "abcdef", start: 1, end: 4, replacement: "",
			wantBuffer: "aef", wantCursor: 1,
		},
		{
			name:   "replace middle",
			buffer: "one two three", start: 4, end: 7, replacement: "2",
			wantBuffer: "one 2 three", wantCursor: 5,
		},
		{
			name:   "offset past end clamps",
			buffer: "ab", start: 10, end: 12, replacement: "x",
			wantBuffer: "abx", wantCursor: 3,
		},
		{
			name:   "negative start clamps",
			buffer: "ab", start: -3, end: 1, replacement: "Z",
			wantBuffer: "Zb", wantCursor: 1,
		},
		{
			name:   "inverted range reorders",
			buffer: "abcd", start: 3, end: 1, replacement: "-",
			wantBuffer: "a-d", wantCursor: 2,
		},
		{
			name:   "rune offsets not byte offsets",
			buffer: "héllo wörld", start: 6, end: 11, replacement: "there",
			wantBuffer: "héllo there", wantCursor: 11,
		},
		{
			name:   "multibyte replacement counts runes",
			buffer: "ab", start: 1, end: 1, replacement: "日本",
			wantBuffer: "a日本b", wantCursor: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBuffer, gotCursor := Splice(tt.buffer, tt.start, tt.end, tt.replacement)
			if gotBuffer != tt.wantBuffer {
				t.Errorf("buffer = %q, want %q", gotBuffer, tt.wantBuffer)
			}
			if gotCursor != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", gotCursor, tt.wantCursor)
			}
		})
	}
}

func TestInsertAt(t *testing.T) {
	// The image-upload path: the offset was captured before the upload
	// started and the buffer shrank while it was in flight. The insert
	// clamps to the current end instead of failing.
	buffer, cursor := InsertAt("short", 40, "![a](t|f)\n")
	if buffer != "short![a](t|f)\n" {
		t.Errorf("buffer = %q", buffer)
	}
	if cursor != RuneLen(buffer) {
		t.Errorf("cursor = %d, want %d", cursor, RuneLen(buffer))
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("héllo"); got != 5 {
		t.Errorf("RuneLen(héllo) = %d, want 5", got)
	}
	if got := RuneLen(""); got != 0 {
		t.Errorf("RuneLen of empty = %d, want 0", got)
	}
}
