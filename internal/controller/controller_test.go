// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/exchange"
	"github.com/cfchat/cfchat-tui/internal/history"
	"github.com/cfchat/cfchat-tui/internal/model"
	"github.com/cfchat/cfchat-tui/internal/render"
	"github.com/cfchat/cfchat-tui/internal/store"
)

// scriptedStreamer replays one scripted answer per call.
type scriptedStreamer struct {
	answer      string
	traceID     string
	recommended []string
	err         error
	calls       atomic.Int32
	block       chan struct{}
	started     chan struct{}
}

func (s *scriptedStreamer) StreamChat(ctx context.Context, question, sessionID string, handler chatapi.EventHandler) error {
	s.calls.Add(1)
	if s.started != nil {
		close(s.started)
		s.started = nil
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return s.err
	}
	handler(chatapi.Event{Type: chatapi.EventThinkingComplete})
	for _, r := range s.answer {
		handler(chatapi.Event{Type: chatapi.EventToken, Token: string(r)})
	}
	handler(chatapi.Event{
		Type:                 chatapi.EventDone,
		FullResponse:         s.answer,
		TraceID:              s.traceID,
		RecommendedQuestions: s.recommended,
	})
	return nil
}

type nopRenderer struct{}

func (nopRenderer) RenderThinking(string)   {}
func (nopRenderer) RenderTokenDelta(string) {}
func (nopRenderer) RenderFinal(string)      {}
func (nopRenderer) RenderError(string)      {}

type fakeFeedback struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFeedback) SubmitFeedback(ctx context.Context, fb chatapi.Feedback) error {
	f.calls.Add(1)
	return f.err
}

type fakePeers struct {
	sessions []chatapi.PeerSession
	messages []model.Message
}

func (f *fakePeers) ListPeerSessions(ctx context.Context) ([]chatapi.PeerSession, error) {
	return f.sessions, nil
}

func (f *fakePeers) PeerMessages(ctx context.Context, userID string) ([]model.Message, error) {
	return f.messages, nil
}

type fixture struct {
	ctrl     *Controller
	store    *store.Store
	recs     *store.RecommendationCache
	streamer *scriptedStreamer
	feedback *fakeFeedback
}

func newFixture(t *testing.T, streamer *scriptedStreamer) *fixture {
	t.Helper()
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	st := store.NewStore(kv, "u1")
	recs := store.NewRecommendationCache(kv, "u1")
	machine := exchange.NewMachine(streamer, render.Plain{}, nopRenderer{})
	feedback := &fakeFeedback{}
	peers := history.NewAggregator(&fakePeers{
		sessions: []chatapi.PeerSession{{UserID: "u2", UserName: "Bo", SessionID: "s2", Title: "other"}},
		messages: []model.Message{model.NewUserMessage("their q")},
	})

	return &fixture{
		ctrl:     New(st, recs, machine, feedback, peers),
		store:    st,
		recs:     recs,
		streamer: streamer,
		feedback: feedback,
	}
}

func TestSend_AppendsAndPersistsBothMessages(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{
		answer: "hello there", traceID: "t1", recommended: []string{"more?"},
	})

	require.NoError(t, f.ctrl.Send(context.Background(), "  hi  "))

	active := f.ctrl.Active()
	require.Len(t, active.Messages, 2)
	assert.Equal(t, "hi", active.Messages[0].Content)
	assert.Equal(t, "hello there", active.Messages[1].Content)
	assert.Equal(t, "t1", active.Messages[1].TraceID)

	// Durable round trip
	loaded, ok := f.store.Peek(active.ID)
	require.True(t, ok)
	assert.Len(t, loaded.Messages, 2)

	// Recommendations cached at the assistant message index
	assert.Equal(t, []string{"more?"}, f.recs.Load(active.ID, 1))
	assert.Equal(t, []string{"more?"}, f.ctrl.LastRecommendations())
}

func TestSend_EmptyQuestionRejected(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "x"})
	err := f.ctrl.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, int32(0), f.streamer.calls.Load())
}

func TestSend_SecondSubmissionWhileInFlightIsNoOp(t *testing.T) {
	streamer := &scriptedStreamer{
		answer:  "ok",
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	f := newFixture(t, streamer)
	started := streamer.started

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Send(context.Background(), "first") }()
	<-started

	err := f.ctrl.Send(context.Background(), "second")
	assert.ErrorIs(t, err, exchange.ErrExchangeInFlight)

	close(streamer.block)
	require.NoError(t, <-done)

	// Exactly one network call; the rejected send left no trace.
	assert.Equal(t, int32(1), streamer.calls.Load())
	require.Len(t, f.ctrl.Active().Messages, 2)
	assert.Equal(t, "first", f.ctrl.Active().Messages[0].Content)
}

func TestSend_TransportFailureKeepsUserMessage(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{err: errors.New("network down")})

	err := f.ctrl.Send(context.Background(), "hi")
	require.Error(t, err)

	// The question is kept (retry is manual); no assistant message.
	require.Len(t, f.ctrl.Active().Messages, 1)
	assert.Equal(t, model.RoleUser, f.ctrl.Active().Messages[0].Role)
	assert.False(t, f.ctrl.Busy(), "controls must be re-enabled")
}

func TestEdit_TruncatesAndResubmitsOnce(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "answer", traceID: "t1"})

	require.NoError(t, f.ctrl.Send(context.Background(), "original"))
	require.Len(t, f.ctrl.Active().Messages, 2)
	callsBefore := f.streamer.calls.Load()

	require.NoError(t, f.ctrl.Edit(context.Background(), "edited"))

	active := f.ctrl.Active()
	require.Len(t, active.Messages, 2, "old answer removed, new one appended")
	assert.Equal(t, "edited", active.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, active.Messages[1].Role)
	assert.Equal(t, int32(callsBefore+1), f.streamer.calls.Load(), "exactly one new exchange")

	// Truncated state was persisted
	loaded, ok := f.store.Peek(active.ID)
	require.True(t, ok)
	assert.Equal(t, "edited", loaded.Messages[0].Content)
}

func TestEdit_ClearsStaleRecommendations(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a", recommended: []string{"old?"}})

	require.NoError(t, f.ctrl.Send(context.Background(), "q"))
	id := f.ctrl.Active().ID
	require.NotNil(t, f.recs.Load(id, 1))

	f.streamer.recommended = nil
	require.NoError(t, f.ctrl.Edit(context.Background(), "q2"))
	assert.Nil(t, f.recs.Load(id, 1), "stale recommendations discarded")
}

func TestEdit_NothingToEdit(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "x"})
	err := f.ctrl.Edit(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNothingToEdit)
}

func TestDeleteSession_ActiveReplaced(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a"})
	require.NoError(t, f.ctrl.Send(context.Background(), "q"))
	oldID := f.ctrl.Active().ID

	f.ctrl.DeleteSession(oldID)

	active := f.ctrl.Active()
	assert.NotEqual(t, oldID, active.ID)
	assert.True(t, active.IsEmpty())
	assert.Equal(t, active.ID, f.store.ActiveID())
}

func TestNewChat_SwitchesSessions(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a"})
	require.NoError(t, f.ctrl.Send(context.Background(), "q"))
	oldID := f.ctrl.Active().ID

	fresh := f.ctrl.NewChat()
	assert.NotEqual(t, oldID, fresh.ID)
	assert.True(t, fresh.IsEmpty())

	// Old session still listed
	metas := f.ctrl.Sessions()
	require.Len(t, metas, 1)
	assert.Equal(t, oldID, metas[0].ID)
}

func TestViewPeer_ReadOnlyOverlay(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a"})
	require.NoError(t, f.ctrl.Send(context.Background(), "mine"))
	ownID := f.ctrl.Active().ID
	ownActive := f.store.ActiveID()

	peers, err := f.ctrl.PeerSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 1)

	view, err := f.ctrl.ViewPeer(context.Background(), peers[0])
	require.NoError(t, err)
	assert.Equal(t, "Bo", view.UserName)
	require.Len(t, view.Messages, 1)

	// Display override only: local pointer and store untouched.
	assert.Equal(t, ownID, f.ctrl.Active().ID)
	assert.Equal(t, ownActive, f.store.ActiveID())

	// Input disabled while viewing.
	assert.True(t, f.ctrl.Busy())
	assert.ErrorIs(t, f.ctrl.Send(context.Background(), "try"), ErrReadOnlyView)

	f.ctrl.ReturnToOwn()
	assert.False(t, f.ctrl.Busy())
	require.NoError(t, f.ctrl.Send(context.Background(), "works again"))
}

func TestSendFeedback_IdempotentPerTrace(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a"})

	fb := chatapi.Feedback{TraceID: "t1", Rating: "up"}
	require.NoError(t, f.ctrl.SendFeedback(context.Background(), fb))
	assert.ErrorIs(t, f.ctrl.SendFeedback(context.Background(), fb), ErrFeedbackAlreadySent)
	assert.Equal(t, int32(1), f.feedback.calls.Load())

	// A failed submission may be retried.
	f.feedback.err = errors.New("boom")
	err := f.ctrl.SendFeedback(context.Background(), chatapi.Feedback{TraceID: "t2", Rating: "down"})
	require.Error(t, err)
	f.feedback.err = nil
	require.NoError(t, f.ctrl.SendFeedback(context.Background(), chatapi.Feedback{TraceID: "t2", Rating: "down"}))
}

func TestReset_ReinitializesContext(t *testing.T) {
	f := newFixture(t, &scriptedStreamer{answer: "a"})
	require.NoError(t, f.ctrl.Send(context.Background(), "q"))

	peers, _ := f.ctrl.PeerSessions(context.Background())
	_, err := f.ctrl.ViewPeer(context.Background(), peers[0])
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SendFeedback(context.Background(), chatapi.Feedback{TraceID: "t1", Rating: "up"}))

	f.ctrl.Reset()
	assert.False(t, f.ctrl.ReadOnly())
	require.NoError(t, f.ctrl.SendFeedback(context.Background(), chatapi.Feedback{TraceID: "t1", Rating: "up"}),
		"feedback flags reset with the context")
}
