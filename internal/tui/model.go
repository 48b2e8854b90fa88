// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/controller"
	"github.com/cfchat/cfchat-tui/internal/exchange"
	"github.com/cfchat/cfchat-tui/internal/history"
	"github.com/cfchat/cfchat-tui/internal/model"
	"github.com/cfchat/cfchat-tui/internal/render"
)

// =============================================================================
// MODES
// =============================================================================

// mode selects which surface has focus.
type mode int

const (
	modeChat mode = iota
	modeSessions
	modePeers
	modePeerView
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	ctrl   *controller.Controller
	keys   KeyMap
	styles Styles

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	markdown render.Markdown

	width  int
	height int
	ready  bool

	mode     mode
	thinking string // progress text while waiting for tokens
	waiting  bool   // exchange in flight
	stream   string // rendered accumulated answer during streaming
	errText  string
	notice   string
	editing  bool

	recs     []string
	recIndex int

	sessions []model.SessionMeta
	peers    []chatapi.PeerSession
	cursor   int
	peerView *history.View

	storeEvents chan struct{}
}

// New creates the chat model over an initialized controller.
func New(ctrl *controller.Controller) *Model {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Prompt = "> "
	input.Focus()
	input.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		ctrl:        ctrl,
		keys:        DefaultKeyMap(),
		styles:      DefaultStyles(),
		input:       input,
		spin:        spin,
		markdown:    render.Plain{},
		storeEvents: make(chan struct{}, 1),
	}
	m.recs = ctrl.LastRecommendations()
	return m
}

// WatchStore subscribes to external writes of the session data so a
// concurrent process refreshes this view. Best-effort.
func (m *Model) WatchStore(watch func(func()) error) {
	_ = watch(func() {
		select {
		case m.storeEvents <- struct{}{}:
		default:
		}
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.waitStoreCmd())
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) sendCmd(text string, edit bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if edit {
			err = m.ctrl.Edit(context.Background(), text)
		} else {
			err = m.ctrl.Send(context.Background(), text)
		}
		return ExchangeDoneMsg{Err: err}
	}
}

func (m *Model) peersCmd() tea.Cmd {
	return func() tea.Msg {
		peers, err := m.ctrl.PeerSessions(context.Background())
		return PeerSessionsMsg{Peers: peers, Err: err}
	}
}

func (m *Model) peerViewCmd(peer chatapi.PeerSession) tea.Cmd {
	return func() tea.Msg {
		view, err := m.ctrl.ViewPeer(context.Background(), peer)
		return PeerViewMsg{View: view, Err: err}
	}
}

func (m *Model) feedbackCmd(fb chatapi.Feedback) tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.SendFeedback(context.Background(), fb)
		return FeedbackSentMsg{Rating: fb.Rating, Err: err}
	}
}

func (m *Model) waitStoreCmd() tea.Cmd {
	return func() tea.Msg {
		<-m.storeEvents
		return StoreChangedMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ThinkingMsg:
		m.waiting = true
		m.thinking = msg.Status
		m.stream = ""
		m.errText = ""
		return m, nil

	case StreamRenderMsg:
		m.thinking = ""
		m.stream = msg.Rendered
		m.refreshTranscript()
		return m, nil

	case FinalRenderMsg:
		m.thinking = ""
		m.stream = msg.Rendered
		m.refreshTranscript()
		return m, nil

	case StreamErrorMsg:
		m.thinking = ""
		m.errText = msg.Message
		return m, nil

	case ExchangeDoneMsg:
		return m.exchangeDone(msg.Err)

	case PeerSessionsMsg:
		if msg.Err != nil {
			m.mode = modeChat
			m.errText = "Could not load team history: " + msg.Err.Error()
			return m, nil
		}
		m.peers = msg.Peers
		m.cursor = 0
		return m, nil

	case PeerViewMsg:
		if msg.Err != nil {
			m.mode = modePeers
			m.errText = "Could not open that conversation: " + msg.Err.Error()
			return m, nil
		}
		m.peerView = msg.View
		m.mode = modePeerView
		m.showPeerTranscript(msg.View)
		return m, nil

	case FeedbackSentMsg:
		switch {
		case errors.Is(msg.Err, controller.ErrFeedbackAlreadySent):
			m.notice = "Feedback already sent for this answer."
		case msg.Err != nil:
			m.errText = "Feedback failed: " + msg.Err.Error()
		default:
			m.notice = "Thanks for the feedback."
		}
		return m, nil

	case StoreChangedMsg:
		// Another process wrote the store; refresh what we display.
		if m.mode == modeSessions {
			m.sessions = m.ctrl.Sessions()
			if m.cursor >= len(m.sessions) {
				m.cursor = 0
			}
		}
		return m, m.waitStoreCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	bodyHeight := height - 6 // header, thinking, input, status
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = bodyHeight
	}
	m.input.Width = width - 4
	m.markdown = render.NewMarkdown(width - 2)
	m.refreshTranscript()
}

func (m *Model) exchangeDone(err error) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.thinking = ""
	m.stream = ""
	m.editing = false

	switch {
	case err == nil:
		m.recs = m.ctrl.LastRecommendations()
		m.recIndex = 0
	case errors.Is(err, chatapi.ErrAuthExpired):
		// Session expired: nothing is rendered into the transcript, the
		// user is told to sign in again.
		m.errText = "Your session expired. Please sign in again and restart."
	case errors.Is(err, exchange.ErrExchangeInFlight):
		m.notice = "An answer is already being generated."
	case errors.Is(err, controller.ErrEmptyQuestion),
		errors.Is(err, controller.ErrReadOnlyView):
		// Guarded earlier; nothing to show.
	}

	m.refreshTranscript()
	return m, nil
}

// -----------------------------------------------------------------------------
// key handling
// -----------------------------------------------------------------------------

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSessions:
		return m.handleSessionsKey(msg)
	case modePeers:
		return m.handlePeersKey(msg)
	case modePeerView:
		return m.handlePeerViewKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		if m.waiting {
			return m, nil
		}
		m.ctrl.NewChat()
		m.recs = nil
		m.errText = ""
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.Sessions):
		if m.waiting {
			return m, nil
		}
		m.sessions = m.ctrl.Sessions()
		m.cursor = 0
		m.mode = modeSessions
		return m, nil

	case key.Matches(msg, m.keys.Peers):
		if m.waiting {
			return m, nil
		}
		m.peers = nil
		m.mode = modePeers
		return m, m.peersCmd()

	case key.Matches(msg, m.keys.EditLast):
		if m.waiting {
			return m, nil
		}
		active := m.ctrl.Active()
		if i := active.LastUserIndex(); i >= 0 {
			m.input.SetValue(active.Messages[i].Content)
			m.input.CursorEnd()
			m.editing = true
			m.notice = "Editing your last question. Enter resubmits, Esc cancels."
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleRec):
		if len(m.recs) > 0 {
			m.input.SetValue(m.recs[m.recIndex])
			m.input.CursorEnd()
			m.recIndex = (m.recIndex + 1) % len(m.recs)
		}
		return m, nil

	case key.Matches(msg, m.keys.FeedbackUp):
		return m.rateLast("up")

	case key.Matches(msg, m.keys.FeedbackDown):
		return m.rateLast("down")

	case key.Matches(msg, m.keys.Delete):
		if m.waiting {
			return m, nil
		}
		m.ctrl.DeleteSession(m.ctrl.Active().ID)
		m.recs = nil
		m.refreshTranscript()
		m.notice = "Conversation moved to trash."
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.editing {
			m.editing = false
			m.input.SetValue("")
			m.notice = ""
		}
		m.errText = ""
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		m.notice = "An answer is already being generated."
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	edit := m.editing
	m.input.SetValue("")
	m.editing = false
	m.errText = ""
	m.recs = nil
	m.waiting = true
	m.thinking = ""
	m.refreshTranscript()
	return m, m.sendCmd(text, edit)
}

func (m *Model) rateLast(rating string) (tea.Model, tea.Cmd) {
	active := m.ctrl.Active()
	for i := len(active.Messages) - 1; i >= 0; i-- {
		msg := active.Messages[i]
		if msg.Role == model.RoleAssistant {
			if msg.TraceID == "" {
				m.notice = "This answer cannot receive feedback."
				return m, nil
			}
			return m, m.feedbackCmd(chatapi.Feedback{TraceID: msg.TraceID, Rating: rating})
		}
	}
	return m, nil
}

func (m *Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(m.sessions) {
			m.ctrl.DeleteSession(m.sessions[m.cursor].ID)
			m.sessions = m.ctrl.Sessions()
			if m.cursor >= len(m.sessions) {
				m.cursor = 0
			}
			m.refreshTranscript()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.cursor < len(m.sessions) {
			if err := m.ctrl.LoadSession(m.sessions[m.cursor].ID); err != nil {
				m.errText = err.Error()
			} else {
				m.recs = m.ctrl.LastRecommendations()
				m.recIndex = 0
			}
			m.mode = modeChat
			m.refreshTranscript()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePeersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		if m.cursor < len(m.peers)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.cursor < len(m.peers) {
			return m, m.peerViewCmd(m.peers[m.cursor])
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePeerViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ctrl.ReturnToOwn()
		m.peerView = nil
		m.mode = modeChat
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport from the active session plus
// any in-flight stream text and pins the view to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.ctrl.Active().Messages {
		if msg.IsUser() {
			b.WriteString(m.styles.UserLabel.Render("You") + "\n")
			b.WriteString(msg.Content + "\n\n")
		} else {
			b.WriteString(m.styles.BotLabel.Render("Assistant") + "\n")
			b.WriteString(m.markdown.Render(msg.Content) + "\n")
		}
	}
	if m.waiting && m.stream != "" {
		b.WriteString(m.styles.BotLabel.Render("Assistant") + "\n")
		b.WriteString(m.stream + "\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// showPeerTranscript fills the viewport with a read-only conversation.
func (m *Model) showPeerTranscript(view *history.View) {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range view.Messages {
		if msg.IsUser() {
			b.WriteString(m.styles.UserLabel.Render(view.UserName) + "\n")
			b.WriteString(msg.Content + "\n\n")
		} else {
			b.WriteString(m.styles.BotLabel.Render("Assistant") + "\n")
			b.WriteString(m.markdown.Render(msg.Content) + "\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}
