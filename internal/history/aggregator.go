// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides the read-only overlay of other users'
// recent sessions.
//
// Peer sessions are fetched from the backend and displayed as-is; they
// are never persisted locally and opening one never moves the local
// active-session pointer. Input stays disabled for the duration of the
// read-only view.
package history

import (
	"context"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/model"
)

// Fetcher is the backend surface the aggregator reads from, satisfied
// by *chatapi.Client.
type Fetcher interface {
	ListPeerSessions(ctx context.Context) ([]chatapi.PeerSession, error)
	PeerMessages(ctx context.Context, userID string) ([]model.Message, error)
}

// View is one peer session prepared for read-only display.
type View struct {
	UserID   string
	UserName string
	Title    string
	Messages []model.Message
}

// Aggregator fetches and shapes peer history.
type Aggregator struct {
	fetcher Fetcher
}

// NewAggregator creates an aggregator over the given backend.
func NewAggregator(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Sessions returns the most recent session summary per user.
func (a *Aggregator) Sessions(ctx context.Context) ([]chatapi.PeerSession, error) {
	return a.fetcher.ListPeerSessions(ctx)
}

// Open fetches the full message list for a peer's session. The result
// is display-only; nothing is written locally.
func (a *Aggregator) Open(ctx context.Context, peer chatapi.PeerSession) (*View, error) {
	messages, err := a.fetcher.PeerMessages(ctx, peer.UserID)
	if err != nil {
		return nil, err
	}
	return &View{
		UserID:   peer.UserID,
		UserName: peer.UserName,
		Title:    peer.Title,
		Messages: messages,
	}, nil
}
