// Package validator checks that post content is written in the language it
// is declared to be in before it is sent for translation.
package validator

import (
	"fmt"
	"strings"

	"github.com/hawknews/hawk-translation/internal/detector"
	"github.com/hawknews/hawk-translation/internal/render"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator checks the language of rendered content.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid returns true when content (HTML or plain text) appears to be written in lang.
//
// Short texts and texts whose language cannot be determined pass without
// error. When the detected language differs from lang the returned error
// names both codes.
func (v *Validator) IsValid(content, lang string) (bool, error) {
	if lang == "" {
		return true, nil
	}

	text := strings.TrimSpace(render.StripHTMLTags(content))
	if text == "" {
		return false, fmt.Errorf("content is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, lang) {
		return false, fmt.Errorf("expected %s but detected %s", lang, detected)
	}

	return true, nil
}
