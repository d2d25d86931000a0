package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
)

func NewConceptCommand() *cobra.Command {
	var conceptType string
	var language string

	cmd := &cobra.Command{
		Use:   "concept <key>",
		Short: "Look up an astronomy term or symbol",
		Example: `  # Look up a term
  astroguide concept redshift

  # Look up a symbol in English
  astroguide concept --type sym --lang en "M☉"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcept(cmd.Context(), cmd.OutOrStdout(), args[0], conceptType, language)
		},
	}

	cmd.Flags().StringVar(&conceptType, "type", "term", "term or sym")
	cmd.Flags().StringVar(&language, "lang", "", "zh or en (default: saved preference)")

	return cmd
}

func runConcept(ctx context.Context, out io.Writer, key, conceptType, language string) error {
	v := NewValidator()
	typ, err := v.ParseConceptType(conceptType)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("concept key must not be empty")
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	prefs, err := a.store.LoadPreferences()
	if err != nil {
		return err
	}
	lang, err := v.ParseLanguage(language, prefs.Language)
	if err != nil {
		return err
	}

	concept, err := a.api.LookupConcept(ctx, client.ConceptQuery{Type: typ, Language: lang, Key: strings.TrimSpace(key)})
	if err != nil {
		return fmt.Errorf("concept lookup failed: %w", err)
	}

	printConcept(out, concept)
	return nil
}

func printConcept(out io.Writer, c *models.Concept) {
	title := c.Title
	if title == "" {
		title = c.Key
	}
	fmt.Fprintln(out, title)
	if c.Short != "" {
		fmt.Fprintf(out, "\n%s\n", c.Short)
	}
	if c.Details != "" {
		fmt.Fprintf(out, "\n%s\n", c.Details)
	}
	if len(c.SeeAlso) > 0 {
		fmt.Fprintf(out, "\nSee also: %s\n", strings.Join(c.SeeAlso, ", "))
	}
}
