// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/orchestrator"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/session"
)

// UI configuration constants
const (
	defaultWidth      = 100
	defaultHeight     = 30
	inputHeight       = 3
	inputCharLimit    = 4000
	chromeHeight      = 9
	minContentHeight  = 5
	noticeLifetime    = 6 * time.Second
	recordingTickRate = time.Second
)

// Backend is what the chat screen needs from the session.
type Backend interface {
	Catalog() locale.Catalog
	UserID() string
	UserEmail() (string, bool)
	SetUserEmail(email string) (bool, error)
	Messages() []chat.Message
	Loading() bool
	Recording() bool
	Elapsed() time.Duration
	SendText(ctx context.Context, text string) error
	ToggleRecording(ctx context.Context) error
	PlayLatest(ctx context.Context) bool
}

// Message type definitions
type (
	logAppendedMsg   struct{ message chat.Message }
	loadingMsg       struct{ loading bool }
	noticeMsg        struct{ text string }
	noticeExpiredMsg struct{ text string }
	recordingMsg     struct{ recording bool }
	recordingTickMsg struct{}
)

// actionDoneMsg reports the end of a backend call started by a key press.
type actionDoneMsg struct {
	err  error
	text string // submitted text, restored when refused
	stop bool
}

// chatModel is the Bubble Tea model of the chat screen.
type chatModel struct {
	backend Backend
	catalog locale.Catalog
	render  *renderer

	input   textarea.Model
	email   textinput.Model
	content viewport.Model
	spinner spinner.Model

	loading   bool
	recording bool
	stopping  bool
	editing   bool
	notice    string

	width  int
	height int
}

func newChatModel(backend Backend) chatModel {
	catalog := backend.Catalog()

	input := textarea.New()
	input.Placeholder = catalog.InputPlaceholder
	input.ShowLineNumbers = false
	input.CharLimit = inputCharLimit
	input.SetHeight(inputHeight)
	input.SetWidth(defaultWidth - 4)
	input.Prompt = ""
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j", "shift+enter"))
	input.Focus()

	email := textinput.New()
	email.Placeholder = "name@example.com"
	email.Prompt = catalog.EmailPrompt + " "
	email.CharLimit = 254

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = assistantStyle

	m := chatModel{
		backend: backend,
		catalog: catalog,
		render:  newRenderer(catalog, defaultWidth),
		input:   input,
		email:   email,
		content: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner: spin,
		loading: backend.Loading(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.refreshContent()
	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case logAppendedMsg:
		m.refreshContent()

	case loadingMsg:
		m.loading = msg.loading

	case noticeMsg:
		cmds = append(cmds, m.showNotice(msg.text))

	case noticeExpiredMsg:
		if m.notice == msg.text {
			m.notice = ""
		}

	case recordingMsg:
		m.recording = msg.recording
		if m.recording {
			cmds = append(cmds, recordingTick())
		}

	case recordingTickMsg:
		if m.recording {
			cmds = append(cmds, recordingTick())
		}

	case actionDoneMsg:
		if msg.stop {
			m.stopping = false
		}
		m.recording = m.backend.Recording()
		if msg.err != nil {
			log.Printf("[tui] action failed: %v", msg.err)
			if msg.text != "" && m.input.Value() == "" {
				m.input.SetValue(msg.text)
			}
			if errors.Is(msg.err, orchestrator.ErrBusy) || errors.Is(msg.err, session.ErrRecordingActive) {
				cmds = append(cmds, m.showNotice(m.catalog.Busy))
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	if m.editing {
		var cmd tea.Cmd
		m.email, cmd = m.email.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey reacts to shortcuts. handled means the key must not reach the
// focused input.
func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit, true
	}

	if m.editing {
		switch msg.Type {
		case tea.KeyEsc:
			m.closeEmail()
			return nil, true
		case tea.KeyEnter:
			m.saveEmail()
			return nil, true
		}
		return nil, false
	}

	switch msg.String() {
	case "esc":
		return tea.Quit, true
	case "enter":
		return m.submit(), true
	case "ctrl+r":
		return m.toggleRecording(), true
	case "ctrl+p":
		return m.playLatest(), true
	case "ctrl+e":
		m.openEmail()
		return textinput.Blink, true
	case "pgup":
		m.content.ViewUp()
		return nil, true
	case "pgdown":
		m.content.ViewDown()
		return nil, true
	}
	return nil, false
}

// busy reports whether a request or a recording is under way. The backend
// is asked directly because loadingMsg may still be queued.
func (m *chatModel) busy() bool {
	return m.loading || m.recording || m.stopping || m.backend.Loading() || m.backend.Recording()
}

// submit sends the typed text. Blank input, an in-flight request and a
// running recording all block submission.
func (m *chatModel) submit() tea.Cmd {
	if m.busy() {
		return nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.input.Reset()

	backend := m.backend
	return func() tea.Msg {
		return actionDoneMsg{err: backend.SendText(context.Background(), text), text: text}
	}
}

func (m *chatModel) toggleRecording() tea.Cmd {
	if m.stopping {
		return nil
	}

	backend := m.backend
	if m.recording {
		// stopping blocks until the voice reply is logged; recording stays
		// set until then so text cannot slip in ahead of the clip
		m.stopping = true
		return func() tea.Msg {
			return actionDoneMsg{err: backend.ToggleRecording(context.Background()), stop: true}
		}
	}

	if m.loading || m.backend.Loading() {
		return nil
	}

	return func() tea.Msg {
		if err := backend.ToggleRecording(context.Background()); err != nil {
			return actionDoneMsg{err: err}
		}
		return recordingMsg{recording: true}
	}
}

func (m *chatModel) playLatest() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		backend.PlayLatest(context.Background())
		return nil
	}
}

func (m *chatModel) openEmail() {
	m.editing = true
	if current, ok := m.backend.UserEmail(); ok {
		m.email.SetValue(current)
	} else {
		m.email.Reset()
	}
	m.input.Blur()
	m.email.Focus()
}

func (m *chatModel) saveEmail() {
	if _, err := m.backend.SetUserEmail(m.email.Value()); err != nil {
		log.Printf("[tui] save email: %v", err)
	}
	m.closeEmail()
}

func (m *chatModel) closeEmail() {
	m.editing = false
	m.email.Blur()
	m.input.Focus()
}

func (m *chatModel) showNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(noticeLifetime, func(time.Time) tea.Msg { return noticeExpiredMsg{text: text} })
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - chromeHeight
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}
	m.content.Width = width
	m.content.Height = contentHeight
	m.input.SetWidth(width - 4)
	m.email.Width = width - runewidth.StringWidth(m.email.Prompt) - 2
	if m.email.Width < 10 {
		m.email.Width = 10
	}
	m.render.resize(width)
	m.refreshContent()
}

// refreshContent re-renders the log and scrolls to the newest entry.
func (m *chatModel) refreshContent() {
	m.content.SetContent(m.render.conversation(m.backend.Messages()))
	m.content.GotoBottom()
}

// View renders the screen (Bubble Tea interface)
func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.content.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	if m.editing {
		b.WriteString(inputBorder.Render(m.email.View()))
	} else {
		b.WriteString(inputBorder.Render(m.input.View()))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(truncate(m.catalog.KeyHint+" · ctrl+r 🎤 · ctrl+p 🔊 · ctrl+e ✉", m.width)))
	return b.String()
}

func (m chatModel) headerView() string {
	who := m.backend.UserID()
	if email, ok := m.backend.UserEmail(); ok {
		who += " · " + email
	} else {
		who += " · " + m.catalog.AddEmail + " (ctrl+e)"
	}
	return headerStyle.Render("Customer Support") + " " + dimStyle.Render(truncate(who, m.width-20))
}

func (m chatModel) statusView() string {
	switch {
	case m.notice != "":
		return errorStyle.Render(truncate(m.notice, m.width))
	case m.recording:
		elapsed := m.backend.Elapsed().Round(time.Second)
		return recordingStyle.Render(truncate(fmt.Sprintf("%s %s", m.catalog.Recording, elapsed), m.width))
	case m.loading:
		return m.spinner.View() + " " + dimStyle.Render(m.catalog.Typing)
	default:
		return ""
	}
}

func recordingTick() tea.Cmd {
	return tea.Tick(recordingTickRate, func(time.Time) tea.Msg { return recordingTickMsg{} })
}
