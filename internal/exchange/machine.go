// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/render"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the state of the response machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseThinking
	PhaseStreaming
	PhaseFinalized
	PhaseErrored
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseThinking:
		return "thinking"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalized:
		return "finalized"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

// renderInterval throttles incremental re-renders during streaming to
// bound reflow cost under high token rates.
const renderInterval = 16 * time.Millisecond

// Apology replaces an empty or whitespace-only final response so the
// user never sees a blank answer.
const Apology = "I'm sorry, I wasn't able to produce an answer. Please try asking again."

// failureMessage is shown for transport and unexpected stream failures.
const failureMessage = "Something went wrong while generating the answer. Please try again."

// ErrExchangeInFlight rejects a submission while another exchange is
// running. Exchanges are serialized, never concurrent.
var ErrExchangeInFlight = errors.New("an exchange is already in flight")

// ProtocolError carries the server-provided message of an explicit
// error record.
type ProtocolError struct {
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return "assistant error: " + e.Message
}

// =============================================================================
// INTERFACES
// =============================================================================

// Streamer is the network dependency of the machine, satisfied by
// *chatapi.Client.
type Streamer interface {
	StreamChat(ctx context.Context, question, sessionID string, handler chatapi.EventHandler) error
}

// Renderer is the capability interface the machine drives. Implemented
// by the TUI and the plain REPL; the machine never touches a UI toolkit
// directly.
type Renderer interface {
	// RenderThinking shows the progress indicator with the given status
	// text. Called again whenever a status record replaces the text.
	RenderThinking(status string)

	// RenderTokenDelta redraws the rendered form of the full
	// accumulated answer so far.
	RenderTokenDelta(rendered string)

	// RenderFinal redraws the authoritative final answer.
	RenderFinal(rendered string)

	// RenderError shows a failure message for this exchange.
	RenderError(message string)
}

// Result is the outcome of a finalized exchange, handed back to the
// caller for the single persistence write.
type Result struct {
	Content     string
	TraceID     string
	Recommended []string
	Sources     []string
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine runs exchanges. Safe to reuse across exchanges; the in-flight
// guard rejects overlap.
type Machine struct {
	streamer Streamer
	markdown render.Markdown
	renderer Renderer
	limiter  *rate.Limiter

	inFlight atomic.Bool
	phase    Phase
}

// NewMachine creates a machine over the given network, markdown, and
// rendering dependencies.
func NewMachine(streamer Streamer, markdown render.Markdown, renderer Renderer) *Machine {
	return &Machine{
		streamer: streamer,
		markdown: markdown,
		renderer: renderer,
		limiter:  rate.NewLimiter(rate.Every(renderInterval), 1),
		phase:    PhaseIdle,
	}
}

// Busy reports whether an exchange is in flight. Send affordances
// consult this and no-op while it is set.
func (m *Machine) Busy() bool {
	return m.inFlight.Load()
}

// Phase returns the current phase. Meaningful only from the goroutine
// driving the exchange.
func (m *Machine) Phase() Phase {
	return m.phase
}

// exchangeState is the transient per-exchange accumulation. It exists
// only for the duration of one Run and is discarded afterwards.
type exchangeState struct {
	buf     strings.Builder
	sources []string
	result  *Result
	errMsg  string
}

// Run executes one exchange and blocks until it finishes. Exactly one
// network call happens per accepted submission; a concurrent call
// returns ErrExchangeInFlight without touching the network.
//
// On success the finalized Result is returned for persistence. An
// authentication failure is returned as chatapi.ErrAuthExpired without
// rendering an error; every other failure renders through the Renderer
// before returning.
func (m *Machine) Run(ctx context.Context, question, sessionID string) (*Result, error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrExchangeInFlight
	}
	defer func() {
		m.inFlight.Store(false)
		m.phase = PhaseIdle
	}()

	ex := &exchangeState{}
	m.phase = PhaseThinking
	m.renderer.RenderThinking("")

	err := m.streamer.StreamChat(ctx, question, sessionID, func(ev chatapi.Event) {
		m.handle(ex, ev)
	})

	switch {
	case errors.Is(err, chatapi.ErrAuthExpired):
		// Short-circuit to re-authentication; never enters Errored.
		return nil, err
	case err != nil:
		m.phase = PhaseErrored
		m.renderer.RenderError(failureMessage)
		return nil, err
	case ex.errMsg != "":
		return nil, &ProtocolError{Message: ex.errMsg}
	case ex.result == nil:
		// Stream ended without a done record.
		m.phase = PhaseErrored
		m.renderer.RenderError(failureMessage)
		return nil, errors.New("stream ended without a done record")
	}

	return ex.result, nil
}

// handle processes one record in arrival order.
func (m *Machine) handle(ex *exchangeState, ev chatapi.Event) {
	switch ev.Type {
	case chatapi.EventStatus:
		// Status records replace the displayed text without leaving
		// the thinking phase.
		if m.phase == PhaseThinking {
			text := ev.Message
			if text == "" {
				text = ev.Status
			}
			m.renderer.RenderThinking(text)
		}

	case chatapi.EventThinkingComplete:
		m.phase = PhaseStreaming
		m.renderer.RenderTokenDelta("")

	case chatapi.EventSources:
		ex.sources = append(ex.sources, ev.Sources...)

	case chatapi.EventToken:
		if m.phase == PhaseThinking {
			// Tolerate streams that skip thinking_complete.
			m.phase = PhaseStreaming
		}
		ex.buf.WriteString(ev.Token)
		// Throttled redraw, always from the latest buffer. Tokens that
		// land inside a closed window are picked up by the next allowed
		// redraw or by the final render.
		if m.limiter.Allow() {
			m.renderer.RenderTokenDelta(m.markdown.Render(ex.buf.String()))
		}

	case chatapi.EventDone:
		m.phase = PhaseFinalized
		// The authoritative full response supersedes the local
		// accumulation, guarding against token drift.
		final := ev.FullResponse
		if strings.TrimSpace(final) == "" {
			final = Apology
		}
		ex.result = &Result{
			Content:     final,
			TraceID:     ev.TraceID,
			Recommended: ev.RecommendedQuestions,
			Sources:     ex.sources,
		}
		m.renderer.RenderFinal(m.markdown.Render(final))

	case chatapi.EventError:
		m.phase = PhaseErrored
		ex.errMsg = ev.Error
		if ex.errMsg == "" {
			ex.errMsg = "unknown error"
		}
		m.renderer.RenderError(fmt.Sprintf("The assistant reported an error: %s", ex.errMsg))

	default:
		// Unknown record types are ignored; the protocol may grow.
	}
}
