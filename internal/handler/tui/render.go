package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/locale"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
)

const timeLayout = "15:04"

// renderer formats the conversation log for the viewport.
type renderer struct {
	catalog  locale.Catalog
	width    int
	markdown *glamour.TermRenderer
}

func newRenderer(catalog locale.Catalog, width int) *renderer {
	r := &renderer{catalog: catalog}
	r.resize(width)
	return r
}

func (r *renderer) resize(width int) {
	if width == r.width && r.markdown != nil {
		return
	}
	r.width = width

	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		r.markdown = nil
		return
	}
	r.markdown = md
}

// conversation renders every message, or the greeting when there are none.
func (r *renderer) conversation(messages []chat.Message) string {
	if len(messages) == 0 {
		return r.empty()
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.message(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *renderer) empty() string {
	width := r.width
	if width <= 0 {
		width = 60
	}
	greeting := emptyStyle.Width(width).Render(boldStyle.Render(r.catalog.Greeting))
	hint := emptyStyle.Width(width).Render(r.catalog.GreetingHint)
	return "\n\n" + greeting + "\n" + hint + "\n"
}

func (r *renderer) message(msg chat.Message) string {
	stamp := dimStyle.Render(msg.Timestamp.Local().Format(timeLayout))

	var label, body string
	switch msg.Class() {
	case chat.ClassUser:
		label = userStyle.Render(r.catalog.You)
		body = wrapText(msg.Text, r.width)
	case chat.ClassAssistantError:
		label = assistantStyle.Render(r.catalog.Assistant)
		body = errorStyle.Render(wrapText(msg.Text, r.width))
	default:
		label = assistantStyle.Render(r.catalog.Assistant)
		body = r.markdownOrPlain(msg.Text)
	}

	line := label + " " + stamp
	if msg.HasAudio() {
		line += " " + audioStyle.Render("🔊 ctrl+p")
	}
	return line + "\n" + body
}

func (r *renderer) markdownOrPlain(text string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wrapText(text, r.width)
}

// wrapText wraps on display width so Devanagari and emoji line up.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, maxWidth)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result, current strings.Builder
	width := 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth && width > 0 {
			result.WriteString(current.String())
			result.WriteString("\n")
			current.Reset()
			width = 0
		}
		current.WriteRune(r)
		width += w
	}
	result.WriteString(current.String())
	return result.String()
}

// truncate cuts s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
