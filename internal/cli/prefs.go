package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/models"
)

func NewPrefsCommand() *cobra.Command {
	var theme string
	var language string
	var difficulty string

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		Long:  `Show the saved theme, answer language and difficulty, or change any of them.`,
		Example: `  # Show preferences
  astroguide prefs

  # Switch to English answers at the advanced level
  astroguide prefs --language en --difficulty advanced`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(cmd.OutOrStdout(), dbPath, theme, language, difficulty)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "dark or light")
	cmd.Flags().StringVar(&language, "language", "", "zh or en")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "basic, intermediate or advanced")

	return cmd
}

func runPrefs(out io.Writer, database, theme, language, difficulty string) error {
	store, err := openStore(database)
	if err != nil {
		return err
	}
	defer store.Close()

	current, err := store.LoadPreferences()
	if err != nil {
		return err
	}

	v := NewValidator()
	updated := current
	if updated.Theme, err = v.ParseTheme(theme, current.Theme); err != nil {
		return err
	}
	if updated.Language, err = v.ParseLanguage(language, current.Language); err != nil {
		return err
	}
	if updated.Difficulty, err = v.ParseDifficulty(difficulty, current.Difficulty); err != nil {
		return err
	}

	if updated != current {
		if err := store.SavePreferences(updated); err != nil {
			return err
		}
		fmt.Fprintln(out, "✓ Preferences saved")
	}

	printPreferences(out, updated)
	return nil
}

func printPreferences(out io.Writer, p models.Preferences) {
	fmt.Fprintf(out, "Theme:      %s\n", p.Theme)
	fmt.Fprintf(out, "Language:   %s\n", p.Language)
	fmt.Fprintf(out, "Difficulty: %s\n", p.Difficulty)
}
