// Package settings holds the plugin configuration: the API key, the API base
// URL, the default tier and the default target languages.
//
// Values live in the host option table under the hawk_ prefix. Install seeds
// the documented defaults; Set sanitizes input before storing it.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/render"
	"github.com/hawknews/hawk-translation/internal/store"
)

const (
	KeyAPIKey           = "api_key"
	KeyAPIBaseURL       = "api_base_url"
	KeyDefaultTier      = "default_tier"
	KeyDefaultLanguages = "default_languages"

	DefaultAPIBaseURL = "https://api.hawknewsservice.org/v1"
	DefaultTier       = internal.TierInstant

	optionPrefix = "hawk_"
)

// DefaultLanguages is the language set seeded at install time.
var DefaultLanguages = []string{"es"}

// Keys lists the known settings in display order.
var Keys = []string{KeyAPIKey, KeyAPIBaseURL, KeyDefaultTier, KeyDefaultLanguages}

// Configuration is a typed snapshot of the stored settings.
type Configuration struct {
	APIKey           string
	APIBaseURL       string
	DefaultTier      internal.Tier
	DefaultLanguages []string
}

// OptionStore is the host key/value storage the settings are kept in.
type OptionStore interface {
	GetOption(ctx context.Context, name string) (string, error)
	SetOption(ctx context.Context, name, value string) error
	AddOption(ctx context.Context, name, value string) (bool, error)
}

type Settings struct {
	opts OptionStore
}

func New(opts OptionStore) *Settings {
	return &Settings{opts: opts}
}

// Defaults returns the documented default for every key.
func Defaults() map[string]string {
	langs, _ := json.Marshal(DefaultLanguages)
	return map[string]string{
		KeyAPIKey:           "",
		KeyAPIBaseURL:       DefaultAPIBaseURL,
		KeyDefaultTier:      string(DefaultTier),
		KeyDefaultLanguages: string(langs),
	}
}

// Install adds every missing key with its default. Existing values are kept.
func (s *Settings) Install(ctx context.Context) error {
	defaults := Defaults()
	for _, key := range Keys {
		if _, err := s.opts.AddOption(ctx, optionPrefix+key, defaults[key]); err != nil {
			return fmt.Errorf("failed to install %s: %w", key, err)
		}
	}
	return nil
}

// Get returns the stored value for key, falling back to its default.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	def, ok := Defaults()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting: %s", key)
	}
	v, err := s.opts.GetOption(ctx, optionPrefix+key)
	if errors.Is(err, store.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// Set sanitizes value and persists it immediately.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	if _, ok := Defaults()[key]; !ok {
		return fmt.Errorf("unknown setting: %s", key)
	}
	if key == KeyDefaultLanguages {
		return s.SetDefaultLanguages(ctx, strings.Split(value, ","))
	}
	if err := s.opts.SetOption(ctx, optionPrefix+key, Sanitize(value)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// SetDefaultLanguages stores the language set, deduplicated, in the given order.
func (s *Settings) SetDefaultLanguages(ctx context.Context, langs []string) error {
	seen := make(map[string]bool)
	clean := make([]string, 0, len(langs))
	for _, l := range langs {
		l = strings.ToLower(Sanitize(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		clean = append(clean, l)
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	if err := s.opts.SetOption(ctx, optionPrefix+KeyDefaultLanguages, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyDefaultLanguages, err)
	}
	return nil
}

// Load reads all settings into a Configuration.
func (s *Settings) Load(ctx context.Context) (Configuration, error) {
	var cfg Configuration

	apiKey, err := s.Get(ctx, KeyAPIKey)
	if err != nil {
		return cfg, err
	}
	baseURL, err := s.Get(ctx, KeyAPIBaseURL)
	if err != nil {
		return cfg, err
	}
	tier, err := s.Get(ctx, KeyDefaultTier)
	if err != nil {
		return cfg, err
	}
	rawLangs, err := s.Get(ctx, KeyDefaultLanguages)
	if err != nil {
		return cfg, err
	}

	cfg.APIKey = apiKey
	cfg.APIBaseURL = baseURL
	cfg.DefaultTier = internal.Tier(tier)
	if err := json.Unmarshal([]byte(rawLangs), &cfg.DefaultLanguages); err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", KeyDefaultLanguages, err)
	}
	return cfg, nil
}

// Sanitize turns form input into a single line of plain text: NFC
// normalized, tags removed, runs of whitespace collapsed, trimmed.
func Sanitize(value string) string {
	value = strings.ToValidUTF8(value, "")
	value = norm.NFC.String(value)
	value = render.StripHTMLTags(value)
	return strings.Join(strings.Fields(value), " ")
}
