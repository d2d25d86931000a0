package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/session"
)

func NewShowCommand() *cobra.Command {
	var before string
	var limit int

	cmd := &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print the messages of a conversation",
		Long:  `Print one page of a conversation's history, oldest first.`,
		Example: `  # Show the newest messages
  astroguide show 7f1c2d

  # Show the page before a cursor
  astroguide show 7f1c2d --before msg_120 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateLimit(limit); err != nil {
				return err
			}
			return runShow(cmd.Context(), cmd.OutOrStdout(), args[0], before, limit)
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "Cursor of the page to show")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of messages")

	return cmd
}

func runShow(ctx context.Context, out io.Writer, conversationID, before string, limit int) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := a.api.GetConversation(ctx, conversationID, before, limit)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	printDetail(out, detail)
	return nil
}

func normalizeMessages(serverMsgs []client.ServerMessage) []models.Message {
	msgs := make([]models.Message, 0, len(serverMsgs))
	for _, m := range serverMsgs {
		msgs = append(msgs, m.Normalize())
	}
	return session.SortMessages(msgs)
}

func printDetail(out io.Writer, detail *client.ConversationDetail) {
	fmt.Fprintf(out, "%s [%s]\n", detail.Conversation.DisplayTitle(), detail.Conversation.ID)
	fmt.Fprintln(out, strings.Repeat("─", 40))

	msgs := normalizeMessages(detail.Messages)
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages yet.")
	}
	for _, msg := range msgs {
		header := roleLabel(msg.Role)
		if !msg.CreatedAt.IsZero() {
			header += " · " + msg.CreatedAt.Local().Format(timeLayout)
		}
		if msg.Status != "" && msg.Status != models.StatusDone {
			header += " · " + string(msg.Status)
		}
		fmt.Fprintf(out, "\n%s\n%s\n", header, msg.Content)
		if usage := usageLine(msg); usage != "" {
			fmt.Fprintf(out, "  %s\n", usage)
		}
	}

	if detail.NextBefore != nil && *detail.NextBefore != "" {
		fmt.Fprintf(out, "\nEarlier: astroguide show %s --before %s\n", detail.Conversation.ID, *detail.NextBefore)
	}
}
