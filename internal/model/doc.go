// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
//
// A Session is a persisted, titled conversation holding an ordered list
// of messages. Messages are a tagged variant over Role: user messages
// carry only content, assistant messages additionally carry recommended
// follow-up questions and a trace id correlating the message with
// server-side logging.
package model
