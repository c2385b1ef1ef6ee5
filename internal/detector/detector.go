package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Languages are the candidates the detector chooses between: the source
// language plus every language offered in the editor widget that lingua knows.
var Languages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Chinese,
	lingua.Korean,
	lingua.Arabic,
	lingua.French,
	lingua.Polish,
	lingua.Hindi,
	lingua.Urdu,
}

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(Languages...).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
