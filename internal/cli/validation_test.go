package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jasperwreed/astroguide/internal/models"
)

func TestValidator_ParseDifficulty(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		value   string
		want    models.Difficulty
		wantErr bool
	}{
		{name: "empty uses fallback", value: "", want: models.DifficultyIntermediate},
		{name: "basic", value: "basic", want: models.DifficultyBasic},
		{name: "case insensitive", value: "ADVANCED", want: models.DifficultyAdvanced},
		{name: "unknown", value: "expert", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ParseDifficulty(tt.value, models.DifficultyIntermediate)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDifficulty() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidator_ParseLanguage(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		value   string
		want    models.Language
		wantErr bool
	}{
		{name: "empty uses fallback", value: "", want: models.LanguageZh},
		{name: "en", value: "en", want: models.LanguageEn},
		{name: "upper case", value: "ZH", want: models.LanguageZh},
		{name: "unknown", value: "fr", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ParseLanguage(tt.value, models.LanguageZh)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLanguage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLanguage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidator_ParseThemeAndConceptType(t *testing.T) {
	v := NewValidator()

	if got, err := v.ParseTheme("light", models.ThemeDark); err != nil || got != models.ThemeLight {
		t.Errorf("ParseTheme(light) = %v, %v", got, err)
	}
	if got, err := v.ParseTheme("", models.ThemeLight); err != nil || got != models.ThemeLight {
		t.Errorf("ParseTheme(\"\") = %v, %v", got, err)
	}
	if _, err := v.ParseTheme("solarized", models.ThemeDark); err == nil {
		t.Error("ParseTheme(solarized) should fail")
	}

	if got, err := v.ParseConceptType(""); err != nil || got != models.ConceptTerm {
		t.Errorf("ParseConceptType(\"\") = %v, %v", got, err)
	}
	if got, err := v.ParseConceptType("sym"); err != nil || got != models.ConceptSymbol {
		t.Errorf("ParseConceptType(sym) = %v, %v", got, err)
	}
	if _, err := v.ParseConceptType("formula"); err == nil {
		t.Error("ParseConceptType(formula) should fail")
	}
}

func TestValidator_ValidateContent(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "question", content: "What is a pulsar?", wantErr: false},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace", content: " \n\t ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateContent(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateLimitAndFormat(t *testing.T) {
	v := NewValidator()

	for _, limit := range []int{1, 20, 100} {
		if err := v.ValidateLimit(limit); err != nil {
			t.Errorf("ValidateLimit(%d) error = %v", limit, err)
		}
	}
	for _, limit := range []int{0, -1, 101} {
		if err := v.ValidateLimit(limit); err == nil {
			t.Errorf("ValidateLimit(%d) should fail", limit)
		}
	}

	for _, format := range []string{"markdown", "md", "json"} {
		if err := v.ValidateExportFormat(format); err != nil {
			t.Errorf("ValidateExportFormat(%q) error = %v", format, err)
		}
	}
	if err := v.ValidateExportFormat("pdf"); err == nil {
		t.Error("ValidateExportFormat(pdf) should fail")
	}
}

func TestValidator_ResolvePath(t *testing.T) {
	v := NewValidator()

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{
			name:    "empty path",
			path:    "",
			want:    "",
			wantErr: false,
		},
		{
			name:    "current directory",
			path:    ".",
			want:    cwd,
			wantErr: false,
		},
		{
			name:    "absolute path",
			path:    "/tmp/transcript.md",
			want:    "/tmp/transcript.md",
			wantErr: false,
		},
		{
			name:    "relative path",
			path:    "exports/c1.md",
			want:    filepath.Join(cwd, "exports/c1.md"),
			wantErr: false,
		},
		{
			name:    "relative path with parent",
			path:    "../test",
			want:    filepath.Join(filepath.Dir(cwd), "test"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ResolvePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResolvePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ResolvePath() = %v, want %v", got, tt.want)
			}
		})
	}
}
