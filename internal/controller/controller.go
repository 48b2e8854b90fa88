// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/exchange"
	"github.com/cfchat/cfchat-tui/internal/history"
	"github.com/cfchat/cfchat-tui/internal/model"
	"github.com/cfchat/cfchat-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyQuestion rejects blank submissions.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrReadOnlyView rejects sends while a peer session is displayed.
	ErrReadOnlyView = errors.New("viewing another user's session is read-only")

	// ErrNothingToEdit is returned when the session has no user message.
	ErrNothingToEdit = errors.New("no user message to edit")

	// ErrFeedbackAlreadySent enforces one feedback submission per
	// assistant message, client-side.
	ErrFeedbackAlreadySent = errors.New("feedback already sent for this message")
)

// FeedbackSender is the feedback surface of the backend client.
type FeedbackSender interface {
	SubmitFeedback(ctx context.Context, fb chatapi.Feedback) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the session context for one signed-in user.
type Controller struct {
	store    *store.Store
	recs     *store.RecommendationCache
	machine  *exchange.Machine
	feedback FeedbackSender
	peers    *history.Aggregator

	active       *model.Session
	peerView     *history.View
	feedbackSent map[string]bool // trace id -> submitted
}

// New creates the controller and opens the active session (init on
// mount).
func New(st *store.Store, recs *store.RecommendationCache, machine *exchange.Machine,
	feedback FeedbackSender, peers *history.Aggregator) *Controller {
	return &Controller{
		store:        st,
		recs:         recs,
		machine:      machine,
		feedback:     feedback,
		peers:        peers,
		active:       st.OpenActive(),
		feedbackSent: make(map[string]bool),
	}
}

// Reset re-initializes the context on logout/login.
func (c *Controller) Reset() {
	c.peerView = nil
	c.feedbackSent = make(map[string]bool)
	c.active = c.store.OpenActive()
}

// Active returns the active session.
func (c *Controller) Active() *model.Session {
	return c.active
}

// ReadOnly reports whether a peer session is being displayed.
func (c *Controller) ReadOnly() bool {
	return c.peerView != nil
}

// Busy reports whether input controls should be disabled: an exchange
// in flight or a read-only peer view open.
func (c *Controller) Busy() bool {
	return c.machine.Busy() || c.ReadOnly()
}

// =============================================================================
// SEND / EDIT
// =============================================================================

// Send submits a question on the active session. The user message is
// appended and persisted before the stream opens; the finalized answer
// is persisted exactly once when the exchange completes.
func (c *Controller) Send(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	if c.ReadOnly() {
		return ErrReadOnlyView
	}
	if c.machine.Busy() {
		return exchange.ErrExchangeInFlight
	}

	c.active.Append(model.NewUserMessage(question))
	c.store.Save(c.active)

	return c.runExchange(ctx, question)
}

// Edit replaces the most recent user message with newText, discards
// every message after it and any stale recommendations, persists the
// truncated state, and resubmits as a fresh exchange. Only the last
// user message is editable.
func (c *Controller) Edit(ctx context.Context, newText string) error {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return ErrEmptyQuestion
	}
	if c.ReadOnly() {
		return ErrReadOnlyView
	}
	if c.machine.Busy() {
		return exchange.ErrExchangeInFlight
	}

	i := c.active.LastUserIndex()
	if i < 0 {
		return ErrNothingToEdit
	}

	// Destructive in-memory truncation; only the following save
	// persists it. The removed messages are not soft-deleted.
	c.active.Messages[i].Content = newText
	c.active.TruncateAfter(i)
	c.recs.Clear(c.active.ID)
	c.store.Save(c.active)

	return c.runExchange(ctx, newText)
}

// runExchange drives the state machine and persists the finalized
// answer plus its recommendations.
func (c *Controller) runExchange(ctx context.Context, question string) error {
	result, err := c.machine.Run(ctx, question, c.active.ID)
	if err != nil {
		// The user message stays; retry is a manual action.
		return err
	}

	c.active.Append(model.NewAssistantMessage(result.Content, result.TraceID, result.Recommended))
	c.store.Save(c.active)
	c.recs.Save(c.active.ID, len(c.active.Messages)-1, result.Recommended)
	return nil
}

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

// NewChat saves the current session and switches to a fresh one.
func (c *Controller) NewChat() *model.Session {
	c.store.Save(c.active) // no-op when empty
	c.active = model.NewSession()
	c.store.SetActiveID(c.active.ID)
	return c.active
}

// LoadSession switches the active session. Subsequent sends target it.
func (c *Controller) LoadSession(id string) error {
	if c.machine.Busy() {
		return exchange.ErrExchangeInFlight
	}
	sess, ok := c.store.Load(id)
	if !ok {
		return errors.New("session not found: " + id)
	}
	c.peerView = nil
	c.active = sess
	return nil
}

// Sessions lists the user's sessions, most recent first.
func (c *Controller) Sessions() []model.SessionMeta {
	return c.store.List()
}

// DeleteSession soft-deletes a session. Deleting the active one
// switches to the new empty session the store creates.
func (c *Controller) DeleteSession(id string) {
	c.recs.Clear(id)
	if fresh := c.store.Delete(id); fresh != nil {
		c.active = fresh
	}
}

// LastRecommendations returns the recommended questions for the most
// recent assistant message of the active session. Older entries stay
// in the cache but are never redisplayed.
func (c *Controller) LastRecommendations() []string {
	if c.ReadOnly() || c.active.IsEmpty() {
		return nil
	}
	last := len(c.active.Messages) - 1
	if c.active.Messages[last].Role != model.RoleAssistant {
		return nil
	}
	if recs := c.active.Messages[last].RecommendedQuestions; len(recs) > 0 {
		return recs
	}
	return c.recs.Load(c.active.ID, last)
}

// =============================================================================
// PEER HISTORY (READ-ONLY)
// =============================================================================

// ViewPeer opens another user's session for display. The local active
// session pointer and store are untouched; input is disabled until
// ReturnToOwn.
func (c *Controller) ViewPeer(ctx context.Context, peer chatapi.PeerSession) (*history.View, error) {
	view, err := c.peers.Open(ctx, peer)
	if err != nil {
		return nil, err
	}
	c.peerView = view
	return view, nil
}

// PeerSessions lists the most recent session per other user.
func (c *Controller) PeerSessions(ctx context.Context) ([]chatapi.PeerSession, error) {
	return c.peers.Sessions(ctx)
}

// PeerView returns the open read-only view, or nil.
func (c *Controller) PeerView() *history.View {
	return c.peerView
}

// ReturnToOwn closes the read-only view and re-enables input.
func (c *Controller) ReturnToOwn() {
	c.peerView = nil
}

// =============================================================================
// FEEDBACK
// =============================================================================

// SendFeedback submits feedback for an assistant message, once per
// trace id.
func (c *Controller) SendFeedback(ctx context.Context, fb chatapi.Feedback) error {
	if fb.TraceID == "" {
		return errors.New("message has no trace id")
	}
	if c.feedbackSent[fb.TraceID] {
		return ErrFeedbackAlreadySent
	}
	if err := c.feedback.SubmitFeedback(ctx, fb); err != nil {
		return err
	}
	c.feedbackSent[fb.TraceID] = true
	return nil
}
