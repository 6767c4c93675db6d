// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the board client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeTOTPRequired
	ErrTypeNotFound
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeConnection, Message: "board is unreachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "not signed in or session expired"}
	ErrTOTPRequired = &ClientError{Type: ErrTypeTOTPRequired, Message: "two-factor code required"}
	ErrNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultTimeout bounds ordinary API calls.
	DefaultTimeout = 15 * time.Second

	// DefaultUploadTimeout bounds image uploads, which move real bytes.
	DefaultUploadTimeout = 60 * time.Second

	// maxResponseSize caps how much of a response body is read. Board
	// payloads are small; anything near this limit is a broken server.
	maxResponseSize = 4 * 1024 * 1024
)

// sharedTransport pools connections for every client instance. TLS 1.2 is
// the floor; boards run behind HTTPS.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// ClientConfig holds configuration options for the board client.
type ClientConfig struct {
	// BaseURL is the board's root URL, without a trailing slash.
	BaseURL string

	// Token is the bearer token for authenticated calls. Empty for the
	// login call itself.
	Token string

	// Timeout for ordinary requests (default: 15s).
	Timeout time.Duration

	// UploadTimeout for multipart image uploads (default: 60s).
	UploadTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:       DefaultTimeout,
		UploadTimeout: DefaultUploadTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the board API.
//
// The Client is safe for concurrent use; bubbletea commands share one
// instance across goroutines.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	uploadClient *http.Client
}

// NewClient creates a board client for the given base URL and token.
func NewClient(baseURL, token string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Token = token
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a board client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = DefaultUploadTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   config.Timeout,
		},
		uploadClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   config.UploadTimeout,
		},
	}
}

// BaseURL returns the board root this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// SESSION
// =============================================================================

// Login exchanges credentials for a session. totpCode may be empty; if the
// account has two-factor enabled the call fails with ErrTOTPRequired and
// the caller prompts for a code.
func (c *Client) Login(ctx context.Context, username, password, totpCode string) (*Session, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	if totpCode != "" {
		body["totp"] = totpCode
	}

	var session Session
	if err := c.postJSON(ctx, "/api/session", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout invalidates the session token server-side.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/session", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// Site fetches the board's name and message of the day.
func (c *Client) Site(ctx context.Context) (*Site, error) {
	var site Site
	if err := c.getJSON(ctx, "/api/site", nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// =============================================================================
// MEMBER SEARCH
// =============================================================================

// SearchMembers runs a prefix search over member names for the mention
// suggestion list. The result is ordered by the server's ranking; an empty
// slice is a normal result.
func (c *Client) SearchMembers(ctx context.Context, query string, limit int) ([]Candidate, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var candidates []Candidate
	if err := c.getJSON(ctx, "/api/members/search", q, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// =============================================================================
// IMAGE UPLOAD
// =============================================================================

// UploadImage sends one image as multipart/form-data and returns the
// stored thumbnail and full-size references.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (*UploadedImage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload form", Cause: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to read image", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to finish upload form", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/uploads", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(c.uploadClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var img UploadedImage
	if err := decodeBody(resp, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// =============================================================================
// BROWSING
// =============================================================================

// Categories lists the board's sections.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Topics fetches one page of a category's topic list.
func (c *Client) Topics(ctx context.Context, categoryID int64, page int) (*TopicPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var result TopicPage
	path := fmt.Sprintf("/api/categories/%d/topics", categoryID)
	if err := c.getJSON(ctx, path, q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Topic fetches a topic with its replies.
func (c *Client) Topic(ctx context.Context, id int64) (*Topic, error) {
	var topic Topic
	if err := c.getJSON(ctx, fmt.Sprintf("/api/topics/%d", id), nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// CreateTopic posts a new topic and returns it as stored.
func (c *Client) CreateTopic(ctx context.Context, categoryID int64, title, body string) (*Topic, error) {
	payload := map[string]any{
		"category_id": categoryID,
		"title":       title,
		"body":        body,
	}
	var topic Topic
	if err := c.postJSON(ctx, "/api/topics", payload, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// CreateReply posts a reply to a topic and returns it as stored.
func (c *Client) CreateReply(ctx context.Context, topicID int64, body string) (*Reply, error) {
	payload := map[string]any{"body": body}
	var reply Reply
	if err := c.postJSON(ctx, fmt.Sprintf("/api/topics/%d/replies", topicID), payload, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

func (c *Client) do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	return decodeBody(resp, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeBody(resp, out)
}

// checkStatus maps non-2xx responses to typed errors, preferring the
// server's own message when the body carries one.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	serverMsg, code := readAPIError(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized && code == "totp_required":
		return ErrTOTPRequired
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if serverMsg != "" {
			return &ClientError{Type: ErrTypeUnauthorized, Message: serverMsg}
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		if serverMsg == "" {
			serverMsg = "board error: " + resp.Status
		}
		return &ClientError{Type: ErrTypeServer, Message: serverMsg}
	default:
		if serverMsg == "" {
			serverMsg = "unexpected status: " + resp.Status
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: serverMsg}
	}
}

// readAPIError pulls the error envelope out of a failed response. Best
// effort: a body that is not the envelope yields empty strings.
func readAPIError(resp *http.Response) (msg, code string) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", ""
	}
	var envelope apiError
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", ""
	}
	return envelope.Error, envelope.Code
}

func decodeBody(resp *http.Response, out any) error {
	limited := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
