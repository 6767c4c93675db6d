// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package api provides the HTTP client for the parley board API.

The client wraps the board's REST endpoints: session login/logout, member
search for @mention suggestions, multipart image upload, and the
category/topic/reply read and write paths. All methods take a context and
return typed errors; connectivity and auth problems map to sentinel errors
so callers can branch with errors.Is.

The client is safe for concurrent use. Response bodies are read through a
size limit so a misbehaving server cannot exhaust memory.
*/
package api
