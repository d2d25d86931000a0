package cli

import (
	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/conversation"
	"github.com/jasperwreed/astroguide/internal/session"
	"github.com/jasperwreed/astroguide/internal/tui"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [conversation-id]",
		Short: "Open the interactive chat view",
		Long: `Open a terminal UI with the conversation list, the transcript of the selected
conversation and a prompt. Answers stream in as they are generated.`,
		Example: `  # Start chatting
  astroguide chat

  # Reopen a conversation
  astroguide chat 7f1c2d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var conversationID string
			if len(args) == 1 {
				conversationID = args[0]
			}
			return runChat(cmd, conversationID)
		},
	}

	return cmd
}

func runChat(cmd *cobra.Command, conversationID string) error {
	bridge := tui.NewBridge()

	a, err := openApp(bridge.Sink())
	if err != nil {
		bridge.Close()
		return err
	}
	defer a.Close()

	prefs, err := a.store.LoadPreferences()
	if err != nil {
		return err
	}

	orch := session.New(a.api, a.center,
		session.WithObserver(bridge.Observer()),
		session.WithPageSize(a.cfg.Paging.MessageLimit),
	)
	conversations := conversation.NewService(a.api, a.store, a.center, a.cfg.Paging.ConversationLimit)

	browser := tui.NewBrowser(tui.Deps{
		Bridge:         bridge,
		Session:        orch,
		Conversations:  conversations,
		Notifier:       a.center,
		Store:          a.store,
		Preferences:    prefs,
		ConversationID: conversationID,
		DBPath:         a.store.Path(),
	})
	return browser.Run(cmd.Context())
}
