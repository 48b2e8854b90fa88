// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType discriminates stream records.
type EventType string

const (
	EventStatus           EventType = "status"
	EventThinkingComplete EventType = "thinking_complete"
	EventSources          EventType = "sources"
	EventToken            EventType = "token"
	EventDone             EventType = "done"
	EventError            EventType = "error"
)

// Event is one decoded stream record. Which fields are populated
// depends on Type.
type Event struct {
	Type EventType `json:"type"`

	// status
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	// sources
	Sources []string `json:"sources,omitempty"`

	// token
	Token string `json:"token,omitempty"`

	// done
	FullResponse         string   `json:"full_response,omitempty"`
	TraceID              string   `json:"trace_id,omitempty"`
	RecommendedQuestions []string `json:"recommended_questions,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// IsTerminal reports whether the event ends the exchange.
func (e Event) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// =============================================================================
// DECODER
// =============================================================================

// dataPrefix frames every payload-carrying line.
var dataPrefix = []byte("data:")

// Decoder reads "data: <json>" framed records from a byte stream.
//
// Records arrive newline-terminated but may be split across network
// chunks; the buffered reader holds the incomplete trailing fragment
// until the rest arrives. A record whose payload fails to parse is
// logged and skipped so one corrupt record never aborts the stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next decoded record in arrival order.
// Returns io.EOF when the underlying stream ends; an incomplete
// trailing fragment at that point is discarded, not an error.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(bytes.TrimSpace(line)) > 0 {
					slog.Debug("discarding incomplete trailing stream fragment",
						"bytes", len(line))
				}
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}

		if !bytes.HasPrefix(line, dataPrefix) {
			// Ignore non-data fields (id:, retry:, ": comment")
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if len(payload) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			slog.Warn("skipping malformed stream record", "err", err)
			continue
		}

		return ev, nil
	}
}
