package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/config"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/session"
)

const version = "0.1.0"

// app carries what every command shares. The session is built once in
// PersistentPreRunE.
type app struct {
	opts    session.Options
	cfg     *config.Config
	session *session.Session
	logFile io.Closer

	server  string
	locale  string
	verbose bool
}

// NewRootCommand builds the command tree. opts lets tests swap the
// microphone, player, store or HTTP client.
func NewRootCommand(opts session.Options) *cobra.Command {
	root, _ := newRootCommand(opts)
	return root
}

func newRootCommand(opts session.Options) (*cobra.Command, *app) {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:     "supportdesk",
		Short:   "Customer support assistant client",
		Version: version,
		Long: `Talk to the customer support assistant by text or voice.
Without a sub-command the interactive chat screen is opened.`,
		Example: `  # Open the chat screen
  $ supportdesk

  # Ask a single question
  $ supportdesk send "मेरा ऑर्डर कहाँ है?"

  # Record five seconds from the microphone and send it
  $ supportdesk voice --duration 5s

  # Save an email for follow-ups
  $ supportdesk email you@example.com`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		RunE:              a.runChat,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&a.server, "server", "s", "", "support service address (overrides SUPPORTDESK_API_URL)")
	flags.StringVar(&a.locale, "locale", "", "interface language: hi or en (overrides SUPPORTDESK_LOCALE)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "write logs to stderr instead of the log file")

	root.AddCommand(
		newChatCommand(a),
		newSendCommand(a),
		newVoiceCommand(a),
		newEmailCommand(a),
		newWhoamiCommand(a),
		newHistoryCommand(a),
		newHealthCommand(a),
		newPlayCommand(a),
	)
	return root, a
}

// Execute runs the CLI with ctx as the root context. Cleanup also runs when
// a command fails, which PersistentPostRun does not cover.
func Execute(ctx context.Context) error {
	root, a := newRootCommand(session.Options{})
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.server != "" {
		cfg.API.BaseURL = strings.TrimRight(a.server, "/")
	}
	if a.locale != "" {
		cfg.UI.Locale = a.locale
	}
	a.cfg = cfg

	if !a.verbose {
		if err := os.MkdirAll(filepath.Dir(cfg.UI.LogFile), 0755); err == nil {
			if f, err := tea.LogToFile(cfg.UI.LogFile, "supportdesk"); err == nil {
				a.logFile = f
			}
		}
	}

	s, err := session.New(cfg, a.opts)
	if err != nil {
		return err
	}
	a.session = s

	out := printer{out: cmd.ErrOrStderr()}
	s.SetNotifier(func(text string) { out.errorf("%s", text) })
	return nil
}

func (a *app) teardown() {
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			log.Printf("[cli] close session: %v", err)
		}
		a.session = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
		log.SetOutput(os.Stderr)
	}
}
