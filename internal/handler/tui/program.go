package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
)

// Session is a Backend that can also push events into the screen.
type Session interface {
	Backend
	Subscribe(fn func(chat.Message)) func()
	OnLoadingChange(fn func(bool))
	SetNotifier(fn func(string))
}

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	session Session
	model   chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(session Session) *ChatProgram {
	return &ChatProgram{session: session, model: newChatModel(session)}
}

// Run starts the chat TUI program and blocks until the user quits.
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())

	unsubscribe := p.session.Subscribe(func(m chat.Message) {
		program.Send(logAppendedMsg{message: m})
	})
	defer unsubscribe()

	p.session.OnLoadingChange(func(loading bool) {
		program.Send(loadingMsg{loading: loading})
	})
	p.session.SetNotifier(func(text string) {
		program.Send(noticeMsg{text: text})
	})
	defer p.session.SetNotifier(nil)

	_, err := program.Run()
	return err
}
