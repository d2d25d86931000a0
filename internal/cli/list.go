package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/models"
)

func NewListCommand() *cobra.Command {
	var limit int
	var cursor string
	var cached bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversations",
		Long: `List conversations newest first, one page at a time. Each page refreshes the
local cache used by search; local renames and deletions are applied on top.`,
		Example: `  # List recent conversations
  astroguide list

  # Fetch the next page
  astroguide list --cursor eyJvIjoyMH0

  # List from the local cache without contacting the server
  astroguide list --cached --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewValidator().ValidateLimit(limit); err != nil {
				return err
			}
			if cached {
				return runListCached(cmd.OutOrStdout(), dbPath, limit)
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), limit, cursor)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of conversations to list")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor returned by the previous page")
	cmd.Flags().BoolVar(&cached, "cached", false, "List from the local cache only")

	return cmd
}

func runList(ctx context.Context, out io.Writer, limit int, cursor string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.api.ListConversations(ctx, cursor, limit)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	if err := a.store.UpsertConversations(page.Items); err != nil {
		return err
	}
	items, err := a.store.ApplyLocalEdits(page.Items)
	if err != nil {
		return err
	}

	printConversations(out, items)
	if page.NextCursor != nil && *page.NextCursor != "" {
		fmt.Fprintf(out, "More: astroguide list --cursor %s\n", *page.NextCursor)
	}
	return nil
}

func runListCached(out io.Writer, database string, limit int) error {
	store, err := openStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.ListConversations(limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	total, err := store.CountConversations()
	if err != nil {
		return fmt.Errorf("failed to count conversations: %w", err)
	}

	printConversations(out, items)
	if len(items) > 0 {
		fmt.Fprintf(out, "Showing %d of %d cached conversations\n", len(items), total)
	}
	return nil
}

func printConversations(out io.Writer, items []models.ConversationListItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No conversations found.")
		return
	}

	fmt.Fprintf(out, "Recent conversations:\n\n")
	for _, item := range items {
		fmt.Fprintf(out, "[%s] %s\n", item.ID, item.DisplayTitle())
		if preview := previewOf(item); preview != "" {
			fmt.Fprintf(out, "  %s\n", preview)
		}
		if !item.UpdatedAt.IsZero() {
			fmt.Fprintf(out, "  Updated: %s\n", item.UpdatedAt.Local().Format(timeLayout))
		}
		fmt.Fprintln(out)
	}
}
