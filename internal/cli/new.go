package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/conversation"
)

func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a conversation",
		Example: `  # Create an untitled conversation
  astroguide new

  # Create a titled conversation
  astroguide new "Black holes"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	return cmd
}

func runNew(ctx context.Context, out io.Writer, title string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := conversation.NewService(a.api, a.store, a.center, a.cfg.Paging.ConversationLimit)
	conv, err := svc.Create(ctx, strings.TrimSpace(title))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created conversation %s (%s)\n", conv.ID, conv.DisplayTitle())
	return nil
}
