// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "tok-123")
}

func TestSearchMembers(t *testing.T) {
	var gotAuth, gotQuery, gotRequestID string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "display_name": "john"},
			{"id": 2, "display_name": "jo hannes", "avatar_ref": "/a/2.png"}
		]`))
	})

	candidates, err := client.SearchMembers(context.Background(), "jo hn&x", 8)
	if err != nil {
		t.Fatalf("SearchMembers: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("request is missing X-Request-ID")
	}
	if gotQuery != "jo hn&x" {
		t.Errorf("query decoded to %q, want the raw text back", gotQuery)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].DisplayName != "john" || candidates[1].AvatarRef != "/a/2.png" {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestSearchMembersEmptyResult(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	candidates, err := client.SearchMembers(context.Background(), "zz", 0)
	if err != nil {
		t.Fatalf("SearchMembers: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{}`,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "totp required",
			status:  http.StatusUnauthorized,
			body:    `{"error": "two-factor code required", "code": "totp_required"}`,
			wantErr: ErrTOTPRequired,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"error": "no such topic"}`,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.Topic(context.Background(), 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerMessageSurfaced(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "storage offline, try again later"}`))
	})

	_, err := client.UploadImage(context.Background(), "a.png", strings.NewReader("data"))
	if err == nil {
		t.Fatal("expected error")
	}
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("err = %T, want *ClientError", err)
	}
	if clientErr.Type != ErrTypeServer {
		t.Errorf("type = %v, want ErrTypeServer", clientErr.Type)
	}
	if !strings.Contains(clientErr.Message, "storage offline") {
		t.Errorf("message %q should carry the server's text", clientErr.Message)
	}
}

func TestUploadImage(t *testing.T) {
	var gotFilename, gotContent string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/uploads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		data, _ := io.ReadAll(file)
		gotContent = string(data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"thumb_ref": "/img/t/9.png", "full_ref": "/img/f/9.png"}`))
	})

	img, err := client.UploadImage(context.Background(), "shot.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if gotFilename != "shot.png" || gotContent != "pngbytes" {
		t.Errorf("server saw filename=%q content=%q", gotFilename, gotContent)
	}
	if img.ThumbRef != "/img/t/9.png" || img.FullRef != "/img/f/9.png" {
		t.Errorf("img = %+v", img)
	}
}

func TestLogin(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/session" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"token": "fresh", "member": {"id": 4, "username": "jm", "display_name": "jm"}}`))
	})

	session, err := client.Login(context.Background(), "jm", "hunter2", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != "fresh" || session.Member.ID != 4 {
		t.Errorf("session = %+v", session)
	}
}

func TestTopicsPagePath(t *testing.T) {
	var gotPath, gotPage string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		w.Write([]byte(`{"topics": [], "page": 3, "has_more": false}`))
	})

	page, err := client.Topics(context.Background(), 12, 3)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if gotPath != "/api/categories/12/topics" || gotPage != "3" {
		t.Errorf("request = %s?page=%s", gotPath, gotPage)
	}
	if page.Page != 3 || page.HasMore {
		t.Errorf("page = %+v", page)
	}
}
