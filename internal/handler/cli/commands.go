package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/handler/tui"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/orchestrator"
)

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat screen",
		Args:  cobra.NoArgs,
		RunE:  a.runChat,
	}
}

func (a *app) runChat(*cobra.Command, []string) error {
	return tui.NewChatProgram(a.session).Run()
}

func newSendCommand(a *app) *cobra.Command {
	var play bool
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one text message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if err := a.session.SendText(cmd.Context(), text); err != nil {
				if errors.Is(err, orchestrator.ErrEmptyMessage) {
					return fmt.Errorf("nothing to send")
				}
				return err
			}
			a.printExchange(cmd, play)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&play, "play", "p", false, "play the reply audio when available")
	return cmd
}

func newVoiceCommand(a *app) *cobra.Command {
	var (
		file     string
		duration time.Duration
		play     bool
	)
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Send a voice message from the microphone or a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := printer{out: cmd.OutOrStdout()}

			if file != "" {
				if err := a.session.SendAudioFile(cmd.Context(), file); err != nil {
					return err
				}
				a.printExchange(cmd, play)
				return nil
			}

			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			out.info("%s (%s)", a.session.Catalog().Recording, duration)
			// the completion callback submits the clip before Record returns
			if _, err := a.session.Capture().Record(cmd.Context(), duration); err != nil {
				return err
			}
			a.printExchange(cmd, play)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "WAV file to send instead of recording")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "how long to record")
	cmd.Flags().BoolVarP(&play, "play", "p", false, "play the reply audio when available")
	return cmd
}

// printExchange prints the last user entry and the reply after it.
func (a *app) printExchange(cmd *cobra.Command, play bool) {
	out := printer{out: cmd.OutOrStdout()}
	catalog := a.session.Catalog()

	messages := a.session.Messages()
	start := len(messages) - 2
	if start < 0 {
		start = 0
	}
	for _, msg := range messages[start:] {
		out.message(catalog, msg)
	}

	if play {
		a.session.PlayLatest(cmd.Context())
	}
}

func newEmailCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "email [address]",
		Short: "Save the email sent along with every message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := printer{out: cmd.OutOrStdout()}

			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				prompt := &survey.Input{Message: a.session.Catalog().EmailPrompt}
				if current, ok := a.session.UserEmail(); ok {
					prompt.Default = current
				}
				if err := survey.AskOne(prompt, &email); err != nil {
					return err
				}
			}

			ok, err := a.session.SetUserEmail(email)
			if err != nil {
				return err
			}
			if !ok {
				out.warning("email not saved: %q is not an address", email)
				return nil
			}
			out.success("email saved: %s", strings.TrimSpace(email))
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user id and email sent with messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user id: %s\n", a.session.UserID())
			if email, ok := a.session.UserEmail(); ok {
				fmt.Fprintf(out, "email:   %s\n", email)
			} else {
				fmt.Fprintf(out, "email:   %s\n", dimColor.Sprint("-"))
			}
			fmt.Fprintf(out, "server:  %s\n", a.session.Client().BaseURL())
			return nil
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List conversations the service stored for this user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := printer{out: cmd.OutOrStdout()}
			email, _ := a.session.UserEmail()

			records, err := a.session.Client().Conversations(cmd.Context(), a.session.UserID(), email, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				out.info("no conversations yet")
				return nil
			}

			catalog := a.session.Catalog()
			w := cmd.OutOrStdout()
			for _, r := range records {
				fmt.Fprintf(w, "%s %s\n", dimColor.Sprint(r.Timestamp), dimColor.Sprint(r.ID))
				fmt.Fprintf(w, "  %s %s\n", userColor.Sprint(catalog.You+":"), r.UserMessage)
				fmt.Fprintf(w, "  %s %s\n", assistantColor.Sprint(catalog.Assistant+":"), r.AIResponse)
				if r.AudioPath != "" {
					fmt.Fprintf(w, "  🔊 %s\n", a.session.Client().ResolveAudioURL("/api/audio/"+r.ID))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of conversations")
	return cmd
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the support service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := printer{out: cmd.OutOrStdout()}
			status, err := a.session.Client().Health(cmd.Context())
			if err != nil {
				out.errorf("%s unreachable", a.session.Client().BaseURL())
				return err
			}
			out.success("%s: %s (database %s)", a.session.Client().BaseURL(), status.Status, status.Database)
			return nil
		},
	}
}

func newPlayCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <audio-url>",
		Short: "Play an audio reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.Play(cmd.Context(), args[0])
		},
	}
}
