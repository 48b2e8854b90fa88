// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cfchat/cfchat-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds non-streaming API requests.
	DefaultTimeout = 30 * time.Second

	// VerifyTimeout bounds the identity verification call; expiry is
	// treated as verification failure, not retried.
	VerifyTimeout = 10 * time.Second

	// syncTimeout bounds the fire-and-forget session metadata sync.
	syncTimeout = 5 * time.Second

	// maxErrorBody limits how much of an error response body is read.
	maxErrorBody = 64 * 1024
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared client for request/response endpoints.
	sharedHTTPClient = &http.Client{
		Transport: newPooledTransport(),
		Timeout:   DefaultTimeout,
	}

	// sharedStreamingClient has no client timeout; the chat stream runs
	// until done/error/stream end.
	sharedStreamingClient = &http.Client{
		Transport: newPooledTransport(),
	}
)

func newPooledTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates the backend URL or token is not set.
	ErrNotConfigured = errors.New("chat backend not configured")

	// ErrAuthExpired indicates a 401/403 response or failed identity
	// verification. Not recoverable locally; the caller must
	// re-authenticate.
	ErrAuthExpired = errors.New("authentication expired")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("chat API error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the cfchat assistant backend with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client // request/response endpoints
	streamer   *http.Client // streaming chat endpoint
}

// NewClient creates a client for the given backend URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: sharedHTTPClient,
		streamer:   sharedStreamingClient,
	}
}

// IsConfigured reports whether the client can reach the backend.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.token != ""
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

// checkStatus maps a non-2xx response to an error. 401/403 always map
// to ErrAuthExpired so callers can short-circuit to re-authentication.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthExpired
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	return c.httpClient.Do(req)
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// chatRequest is the body of the streaming chat endpoint.
type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// EventHandler receives each decoded record in arrival order.
type EventHandler func(ev Event)

// StreamChat submits a question and feeds every decoded record to
// handler in arrival order. It returns after a terminal record (done or
// error) or when the stream ends. The stream itself carries no timeout;
// it is bounded only by ctx.
func (c *Client) StreamChat(ctx context.Context, question, sessionID string, handler EventHandler) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{Question: question, SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamer.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	dec := NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("stream read failed: %w", err)
		}

		handler(ev)

		if ev.IsTerminal() {
			return nil
		}
	}
}

// =============================================================================
// SESSION METADATA SYNC
// =============================================================================

// SyncSessionMeta mirrors session metadata (not content) to the backend
// for cross-device visibility. Fire-and-forget: it returns immediately,
// and failures are logged, never surfaced.
func (c *Client) SyncSessionMeta(meta model.SessionMeta) {
	if !c.IsConfigured() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		resp, err := c.postJSON(ctx, "/api/sessions/sync", meta)
		if err != nil {
			slog.Warn("session metadata sync failed", "session", meta.ID, "err", err)
			return
		}
		defer resp.Body.Close()
		if err := c.checkStatus(resp); err != nil {
			slog.Warn("session metadata sync rejected", "session", meta.ID, "err", err)
		}
	}()
}

// =============================================================================
// PEER HISTORY
// =============================================================================

// PeerSession summarizes another user's most recent session.
type PeerSession struct {
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ListPeerSessions fetches the most recent session summary per user.
func (c *Client) ListPeerSessions(ctx context.Context) ([]PeerSession, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/peers/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var sessions []PeerSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("failed to decode peer sessions: %w", err)
	}
	return sessions, nil
}

// PeerMessages fetches the full message list of a peer's most recent
// session for read-only display.
func (c *Client) PeerMessages(ctx context.Context, userID string) ([]model.Message, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/peers/"+userID+"/messages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode peer messages: %w", err)
	}
	return messages, nil
}

// =============================================================================
// FEEDBACK
// =============================================================================

// Feedback rates one assistant message, correlated by trace id.
// Idempotency is enforced client-side (one submission per message).
type Feedback struct {
	TraceID    string   `json:"trace_id"`
	Rating     string   `json:"rating"`
	Comment    string   `json:"comment,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// SubmitFeedback posts feedback for an assistant message.
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	resp, err := c.postJSON(ctx, "/api/feedback", fb)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp)
}

// =============================================================================
// IDENTITY VERIFICATION
// =============================================================================

// Profile identifies the authenticated user.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// Verify confirms the bearer token against the identity endpoint.
// The call carries an explicit timeout; expiry or any failure maps to
// ErrAuthExpired.
func (c *Client) Verify(ctx context.Context) (Profile, error) {
	if !c.IsConfigured() {
		return Profile{}, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, VerifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/me", nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeout or transport failure both mean the identity could not
		// be verified.
		return Profile{}, fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		if errors.Is(err, ErrAuthExpired) {
			return Profile{}, err
		}
		return Profile{}, fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	return p, nil
}
