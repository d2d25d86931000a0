package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath string
	apiURL string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "astroguide",
		Short: "Terminal client for the AstroGuide astronomy assistant",
		Long: `AstroGuide - Ask astronomy questions from the terminal and watch the answers stream in.
Conversations, preferences and a searchable list cache are kept locally.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to local state database (default: ~/.astroguide/client.db)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default: $ASTROGUIDE_API_BASE_URL or http://localhost:8093/api/v0)")

	rootCmd.AddCommand(
		NewChatCommand(),
		NewAskCommand(),
		NewListCommand(),
		NewNewCommand(),
		NewShowCommand(),
		NewSearchCommand(),
		NewRenameCommand(),
		NewDeleteCommand(),
		NewConceptCommand(),
		NewPrefsCommand(),
		NewExportCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
