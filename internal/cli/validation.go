package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jasperwreed/astroguide/internal/models"
)

// Validator provides methods for validating CLI inputs
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ParseDifficulty accepts basic, intermediate or advanced. An empty value
// returns fallback.
func (v *Validator) ParseDifficulty(value string, fallback models.Difficulty) (models.Difficulty, error) {
	if value == "" {
		return fallback, nil
	}
	d := models.Difficulty(strings.ToLower(value))
	if !d.Valid() {
		return "", fmt.Errorf("invalid difficulty %q: use basic, intermediate or advanced", value)
	}
	return d, nil
}

// ParseLanguage accepts zh or en. An empty value returns fallback.
func (v *Validator) ParseLanguage(value string, fallback models.Language) (models.Language, error) {
	if value == "" {
		return fallback, nil
	}
	l := models.Language(strings.ToLower(value))
	if !l.Valid() {
		return "", fmt.Errorf("invalid language %q: use zh or en", value)
	}
	return l, nil
}

func (v *Validator) ParseTheme(value string, fallback models.Theme) (models.Theme, error) {
	switch models.Theme(strings.ToLower(value)) {
	case "":
		return fallback, nil
	case models.ThemeDark:
		return models.ThemeDark, nil
	case models.ThemeLight:
		return models.ThemeLight, nil
	}
	return "", fmt.Errorf("invalid theme %q: use dark or light", value)
}

func (v *Validator) ParseConceptType(value string) (models.ConceptType, error) {
	switch models.ConceptType(strings.ToLower(value)) {
	case "", models.ConceptTerm:
		return models.ConceptTerm, nil
	case models.ConceptSymbol:
		return models.ConceptSymbol, nil
	}
	return "", fmt.Errorf("invalid concept type %q: use term or sym", value)
}

// ValidateContent rejects blank questions.
func (v *Validator) ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("question must not be empty")
	}
	return nil
}

func (v *Validator) ValidateLimit(limit int) error {
	if limit <= 0 || limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100")
	}
	return nil
}

func (v *Validator) ValidateExportFormat(format string) error {
	switch format {
	case "markdown", "md", "json":
		return nil
	}
	return fmt.Errorf("unsupported format %q: use markdown or json", format)
}

// ResolvePath resolves a path to an absolute path
func (v *Validator) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "." {
		return os.Getwd()
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(cwd, path), nil
}
