package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/session"
)

func NewAskCommand() *cobra.Command {
	var conversationID string
	var difficulty string
	var language string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and stream the answer",
		Long: `Send one question and print the answer as it streams in. A new conversation is
created unless --conversation is given. Press ctrl+c to stop the answer.`,
		Example: `  # Ask in a new conversation
  astroguide ask "Why is Mars red?"

  # Continue a conversation in English at the basic level
  astroguide ask --conversation 7f1c2d --language en --difficulty basic "What about Venus?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runAsk(cmd.Context(), cmd.OutOrStdout(), question, conversationID, difficulty, language)
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation to continue")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "basic, intermediate or advanced (default: saved preference)")
	cmd.Flags().StringVar(&language, "language", "", "zh or en (default: saved preference)")

	return cmd
}

func runAsk(ctx context.Context, out io.Writer, question, conversationID, difficulty, language string) error {
	v := NewValidator()
	if err := v.ValidateContent(question); err != nil {
		return err
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	prefs, err := a.store.LoadPreferences()
	if err != nil {
		return err
	}
	level, err := v.ParseDifficulty(difficulty, prefs.Difficulty)
	if err != nil {
		return err
	}
	lang, err := v.ParseLanguage(language, prefs.Language)
	if err != nil {
		return err
	}

	if conversationID == "" {
		conv, err := a.api.CreateConversation(ctx, "")
		if err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID
		fmt.Fprintf(out, "Conversation %s\n\n", conversationID)
	}

	printer := newAnswerPrinter(out)
	orch := session.New(a.api, a.center,
		session.WithObserver(printer.observe),
		session.WithPageSize(a.cfg.Paging.MessageLimit),
	)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			orch.CancelStream(true)
		case <-done:
		}
	}()

	err = orch.SubmitUserMessage(ctx, conversationID, question, level, lang)
	close(done)
	if err != nil {
		return err
	}

	printer.finish(orch.Snapshot())
	return nil
}

// answerPrinter writes the streaming answer to w as it grows. Snapshots
// older than the last one seen are ignored.
type answerPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	version uint64
	target  models.MessageID
	printed int
}

func newAnswerPrinter(w io.Writer) *answerPrinter {
	return &answerPrinter{w: w}
}

func (p *answerPrinter) observe(s session.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Version <= p.version {
		return
	}
	p.version = s.Version

	if s.PendingAssistantID.IsZero() {
		return
	}
	if s.PendingAssistantID != p.target {
		p.target = s.PendingAssistantID
		p.printed = 0
	}
	p.flush(s)
}

// flush writes whatever part of the target answer has not been printed yet.
func (p *answerPrinter) flush(s session.State) *models.Message {
	for i := range s.Messages {
		msg := &s.Messages[i]
		if msg.ID != p.target {
			continue
		}
		if len(msg.Content) > p.printed {
			fmt.Fprint(p.w, msg.Content[p.printed:])
			p.printed = len(msg.Content)
		}
		return msg
	}
	return nil
}

// finish prints the tail of the answer followed by its outcome.
func (p *answerPrinter) finish(s session.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.target.IsZero() {
		p.target = s.PendingAssistantID
	}
	msg := p.flush(s)
	if p.printed > 0 {
		fmt.Fprintln(p.w)
	}

	switch s.Stream.Phase {
	case session.PhaseCancelled:
		fmt.Fprintln(p.w, "(stopped)")
	case session.PhaseError:
		if s.Stream.ErrorMessage != nil {
			fmt.Fprintf(p.w, "✗ %s\n", *s.Stream.ErrorMessage)
		}
	}

	if msg == nil {
		return
	}
	if usage := usageLine(*msg); usage != "" {
		fmt.Fprintf(p.w, "\n%s\n", usage)
	}
	if len(msg.Citations) > 0 {
		fmt.Fprintln(p.w, "\nSources:")
		for i, c := range msg.Citations {
			fmt.Fprintf(p.w, "  %s\n", citationLine(i+1, c))
		}
	}
}
