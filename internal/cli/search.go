package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/search"
)

func NewSearchCommand() *cobra.Command {
	var limit int
	var showContext bool
	var since time.Duration
	var titledOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversations",
		Long: `Search the locally cached conversation titles and previews using full-text
search. Run "astroguide list" to refresh the cache.`,
		Example: `  # Search for conversations about black holes
  astroguide search "black hole"

  # Search with limited results
  astroguide search nebula --limit 5

  # Only conversations updated in the last week
  astroguide search mars --since 168h

  # Search with full context
  astroguide search "event horizon" --context`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			filters := search.Filters{TitledOnly: titledOnly}
			if since > 0 {
				filters.Since = time.Now().Add(-since)
			}
			return runSearch(cmd.OutOrStdout(), query, limit, showContext, filters, dbPath)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&showContext, "context", false, "Show the full matching preview")
	cmd.Flags().DurationVar(&since, "since", 0, "Only conversations updated within this duration")
	cmd.Flags().BoolVar(&titledOnly, "titled", false, "Only conversations with a title")

	return cmd
}

func runSearch(out io.Writer, query string, limit int, showContext bool, filters search.Filters, database string) error {
	store, err := openStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher := search.NewSearcher(store)
	results, err := searcher.SearchWithFilters(query, limit, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d result(s) for '%s':\n\n", len(results), query)

	for i, result := range results {
		conv := result.Conversation
		fmt.Fprintf(out, "%d. [%s] %s", i+1, conv.ID, conv.DisplayTitle())
		if !conv.UpdatedAt.IsZero() {
			fmt.Fprintf(out, " | %s", conv.UpdatedAt.Local().Format(timeLayout))
		}
		fmt.Fprintln(out)

		if showContext {
			text := previewOf(conv)
			if text == "" {
				text = result.Snippet
			}
			fmt.Fprintf(out, "\n   %s\n", strings.ReplaceAll(text, "\n", "\n   "))
		} else {
			snippet := []rune(result.Snippet)
			if len(snippet) > 100 {
				snippet = append(snippet[:100], []rune("...")...)
			}
			fmt.Fprintf(out, "   %s\n", string(snippet))
		}
		fmt.Fprintln(out)
	}

	return nil
}
