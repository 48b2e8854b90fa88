// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi implements the client for the cfchat assistant
// backend.
//
// The backend streams answers as newline-delimited "data: <json>"
// records with a type discriminator (status, thinking_complete,
// sources, token, done, error). The Decoder turns a raw byte stream
// into those records; the Client owns the HTTP surface: the streaming
// chat endpoint, fire-and-forget session metadata sync, the read-only
// peer history endpoints, feedback submission, and identity
// verification.
package chatapi
