package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/session"
)

// historyPages caps how many history pages one export follows.
const historyPages = 200

func NewExportCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <conversation-id>",
		Short: "Export a conversation transcript",
		Long:  `Export the full history of a conversation as markdown or JSON for sharing or backup.`,
		Example: `  # Export as markdown to stdout
  astroguide export 7f1c2d

  # Export as JSON to a file
  astroguide export 7f1c2d --format json --output mars.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := NewValidator()
			if err := v.ValidateExportFormat(format); err != nil {
				return err
			}
			path, err := v.ResolvePath(output)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], format, path)
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Export format: markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

type historyFetcher interface {
	GetConversation(ctx context.Context, conversationID, before string, limit int) (*client.ConversationDetail, error)
}

type transcript struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
}

func runExport(ctx context.Context, out io.Writer, conversationID, format, path string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := fetchTranscript(ctx, a.api, conversationID, a.cfg.Paging.MessageLimit)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	var data []byte
	if format == "json" {
		data, err = json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = []byte(renderMarkdown(t))
	}

	if path == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(out, "✓ Exported %d messages to %s\n", len(t.Messages), path)
	return nil
}

// fetchTranscript follows the before cursor until the oldest page, merging
// every page into one ordered list.
func fetchTranscript(ctx context.Context, api historyFetcher, conversationID string, limit int) (*transcript, error) {
	t := &transcript{Messages: []models.Message{}}
	before := ""
	seen := map[string]bool{}

	for range historyPages {
		detail, err := api.GetConversation(ctx, conversationID, before, limit)
		if err != nil {
			return nil, err
		}
		if before == "" {
			t.Conversation = detail.Conversation
		}
		t.Messages = session.Merge(t.Messages, normalizeMessages(detail.Messages))

		if detail.NextBefore == nil || *detail.NextBefore == "" || seen[*detail.NextBefore] {
			break
		}
		before = *detail.NextBefore
		seen[before] = true
	}
	return t, nil
}

func renderMarkdown(t *transcript) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Conversation.DisplayTitle())
	if !t.Conversation.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Started %s_\n\n", t.Conversation.CreatedAt.UTC().Format(timeLayout))
	}

	for _, msg := range t.Messages {
		fmt.Fprintf(&b, "## %s\n\n", roleLabel(msg.Role))
		if msg.Status == models.StatusError || msg.Status == models.StatusCancelled {
			fmt.Fprintf(&b, "_(%s)_\n\n", msg.Status)
		}
		if content := strings.TrimSpace(msg.Content); content != "" {
			b.WriteString(content)
			b.WriteString("\n\n")
		}
		if usage := usageLine(msg); usage != "" {
			fmt.Fprintf(&b, "> %s\n\n", usage)
		}
		for i, c := range msg.Citations {
			fmt.Fprintf(&b, "- %s\n", citationLine(i+1, c))
		}
		if len(msg.Citations) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
