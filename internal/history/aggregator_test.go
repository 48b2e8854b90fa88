// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"errors"
	"testing"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/model"
)

type fakeFetcher struct {
	peers    []chatapi.PeerSession
	messages map[string][]model.Message
	err      error
}

func (f *fakeFetcher) ListPeerSessions(ctx context.Context) ([]chatapi.PeerSession, error) {
	return f.peers, f.err
}

func (f *fakeFetcher) PeerMessages(ctx context.Context, userID string) ([]model.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages[userID], nil
}

func TestOpen_BuildsReadOnlyView(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: map[string][]model.Message{
			"alice": {
				model.NewUserMessage("how do refunds work?"),
				model.NewAssistantMessage("Refunds are...", "t1", nil),
			},
		},
	}
	agg := NewAggregator(fetcher)

	view, err := agg.Open(context.Background(), chatapi.PeerSession{
		UserID:   "alice",
		UserName: "Alice",
		Title:    "Refund policy",
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if view.UserName != "Alice" || view.Title != "Refund policy" {
		t.Errorf("view header = %q/%q", view.UserName, view.Title)
	}
	if len(view.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(view.Messages))
	}
}

func TestOpen_FetchErrorPropagates(t *testing.T) {
	wantErr := errors.New("backend down")
	agg := NewAggregator(&fakeFetcher{err: wantErr})

	if _, err := agg.Open(context.Background(), chatapi.PeerSession{UserID: "bob"}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
