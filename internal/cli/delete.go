package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func NewDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Remove a conversation from the local list",
		Long: `Hide a conversation in this client. It stays hidden after the list is refreshed;
the server copy is not deleted.`,
		Example: `  # Delete a conversation with confirmation
  astroguide delete 7f1c2d

  # Delete without confirmation prompt
  astroguide delete 7f1c2d --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.InOrStdin(), cmd.OutOrStdout(), dbPath, args[0], confirm)
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Skip confirmation prompt")

	return cmd
}

func runDelete(in io.Reader, out io.Writer, database, id string, skipConfirm bool) error {
	store, err := openStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	if !skipConfirm {
		label := id
		item, hidden, err := store.GetConversation(id)
		if err != nil {
			return fmt.Errorf("failed to look up conversation: %w", err)
		}
		if hidden {
			fmt.Fprintf(out, "Conversation %s is already deleted.\n", id)
			return nil
		}
		if item != nil {
			label = fmt.Sprintf("'%s' (%s)", item.DisplayTitle(), id)
		}

		fmt.Fprintf(out, "Delete conversation %s? [y/N]: ", label)
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := store.DeleteConversation(id); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Deleted conversation %s\n", id)
	return nil
}
