package models

import "encoding/json"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Preferences struct {
	Theme      Theme      `json:"theme"`
	Language   Language   `json:"language"`
	Difficulty Difficulty `json:"difficulty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:      ThemeDark,
		Language:   LanguageZh,
		Difficulty: DifficultyIntermediate,
	}
}

// ParsePreferences decodes a stored preferences blob. Unknown field values
// fall back to their defaults; a blob that is not JSON returns an error along
// with the full default set.
func ParsePreferences(raw []byte) (Preferences, error) {
	var parsed struct {
		Theme      string `json:"theme"`
		Language   string `json:"language"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return DefaultPreferences(), err
	}

	prefs := DefaultPreferences()
	if parsed.Theme == string(ThemeLight) {
		prefs.Theme = ThemeLight
	}
	if parsed.Language == string(LanguageEn) {
		prefs.Language = LanguageEn
	}
	if d := Difficulty(parsed.Difficulty); d == DifficultyBasic || d == DifficultyAdvanced {
		prefs.Difficulty = d
	}
	return prefs, nil
}
