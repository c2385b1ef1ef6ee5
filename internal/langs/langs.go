// Package langs holds the target languages offered to editors.
package langs

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Language struct {
	Code string
	Name string
}

// Supported is the fixed list shown in the editor widget, in display order.
var Supported = []Language{
	{"es", "Spanish"},
	{"pt", "Portuguese"},
	{"ht", "Haitian Creole"},
	{"zh", "Chinese (Simplified)"},
	{"ko", "Korean"},
	{"ar", "Arabic"},
	{"fr", "French"},
	{"pl", "Polish"},
	{"hi", "Hindi"},
	{"ur", "Urdu"},
}

// Name returns the display name for code, or "" when it is not offered.
func Name(code string) string {
	for _, l := range Supported {
		if l.Code == code {
			return l.Name
		}
	}
	return ""
}

// Normalize canonicalizes a user-typed code ("ES", " fr ") to its two-letter
// base. Codes that are not valid BCP 47 bases are rejected.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return base.String(), nil
}

// NormalizeAll applies Normalize to every code and drops duplicates.
func NormalizeAll(codes []string) ([]string, error) {
	seen := make(map[string]bool)
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		n, err := Normalize(c)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
