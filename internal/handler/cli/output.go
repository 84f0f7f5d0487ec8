package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
)

var (
	// Color definitions for terminal output
	successColor   = color.New(color.FgGreen, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	warningColor   = color.New(color.FgYellow, color.Bold)
	infoColor      = color.New(color.FgCyan)
	userColor      = color.New(color.FgBlue, color.Bold)
	assistantColor = color.New(color.FgCyan, color.Bold)
	dimColor       = color.New(color.Faint)
)

// printer writes command output to one stream.
type printer struct {
	out io.Writer
}

func (p printer) success(format string, args ...interface{}) {
	successColor.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

func (p printer) errorf(format string, args ...interface{}) {
	errorColor.Fprintf(p.out, "✗ %s\n", fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...interface{}) {
	warningColor.Fprintf(p.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func (p printer) info(format string, args ...interface{}) {
	infoColor.Fprintf(p.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// message prints one log entry in its visual class.
func (p printer) message(catalog locale.Catalog, msg chat.Message) {
	stamp := dimColor.Sprint(msg.Timestamp.Local().Format("15:04:05"))

	switch msg.Class() {
	case chat.ClassUser:
		fmt.Fprintf(p.out, "%s %s\n%s\n", userColor.Sprint(catalog.You), stamp, msg.Text)
	case chat.ClassAssistantError:
		fmt.Fprintf(p.out, "%s %s\n%s\n", assistantColor.Sprint(catalog.Assistant), stamp, errorColor.Sprint(msg.Text))
	default:
		fmt.Fprintf(p.out, "%s %s\n%s\n", assistantColor.Sprint(catalog.Assistant), stamp, msg.Text)
	}

	if msg.HasAudio() {
		fmt.Fprintf(p.out, "%s %s\n", infoColor.Sprint("🔊"), msg.AudioURL)
	}
	if msg.ConversationID != "" {
		fmt.Fprintf(p.out, "%s\n", dimColor.Sprintf("conversation %s", msg.ConversationID))
	}
}
