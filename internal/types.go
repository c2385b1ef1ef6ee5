package internal

import "time"

// Version is reported by the CLI.
const Version = "1.0.0"

// SourceLanguage is the only language posts are written in.
const SourceLanguage = "en"

// Tier is the service level requested from the translation API.
type Tier string

const (
	TierInstant   Tier = "instant"
	TierReviewed  Tier = "reviewed"
	TierCertified Tier = "certified"
)

// Tiers lists the tiers in the order the admin form offers them.
var Tiers = []Tier{TierInstant, TierReviewed, TierCertified}

// Label is the human readable name shown in the settings form.
func (t Tier) Label() string {
	switch t {
	case TierInstant:
		return "Instant (AI only)"
	case TierReviewed:
		return "Reviewed (AI + human editor)"
	case TierCertified:
		return "Certified (professional translator)"
	}
	return string(t)
}

// Post is a content item owned by the host.
type Post struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Slug      string    `json:"slug" yaml:"slug"`
	Body      string    `json:"body" yaml:"body"`
	Author    string    `json:"author" yaml:"author"`
	Status    string    `json:"status" yaml:"status"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Caller identifies who is asking for a translation.
type Caller struct {
	User      string
	SessionID string
}

// Subject is the value anti-forgery tokens are bound to.
func (c Caller) Subject() string {
	return c.User + "|" + c.SessionID
}

type Metadata struct {
	Headline  string `json:"headline"`
	SourceURL string `json:"source_url"`
}

// TranslationRequest is the JSON body posted to {base_url}/translate.
type TranslationRequest struct {
	Content        string   `json:"content"`
	SourceLanguage string   `json:"source_language"`
	TargetLanguage string   `json:"target_language"`
	Tier           Tier     `json:"tier"`
	Metadata       Metadata `json:"metadata"`
}

// TranslationResult is what the editor widget receives.
type TranslationResult struct {
	Success bool    `json:"success"`
	JobID   *string `json:"job_id"`
	Code    string  `json:"code,omitempty"`
	Error   string  `json:"error,omitempty"`
}
