package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func NewRenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <conversation-id> <title>",
		Short: "Rename a conversation locally",
		Long:  `Change the title this client shows for a conversation. The server keeps its own title.`,
		Example: `  astroguide rename 7f1c2d "Why Mars is red"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd.OutOrStdout(), dbPath, args[0], strings.Join(args[1:], " "))
		},
	}

	return cmd
}

func runRename(out io.Writer, database, id, title string) error {
	store, err := openStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RenameConversation(id, title); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Renamed conversation %s to %q\n", id, strings.TrimSpace(title))
	return nil
}
