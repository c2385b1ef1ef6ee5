package web

import (
	"net/http"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/settings"
)

const (
	SettingsPage   = "hawk-translation"
	SettingsAction = "hawk_settings"

	fieldAPIKey = "hawk_api_key"
	fieldTier   = "hawk_default_tier"
)

type settingsView struct {
	Nonce  string
	APIKey string
	Tier   internal.Tier
	Tiers  []internal.Tier
	Saved  bool
}

// handleSettings serves the settings page. Only administrators may view or
// save it, and a save needs a valid hawk_settings token for the session.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("page") != SettingsPage {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := callerFrom(r.Context())
	if !s.deps.Users.CanManageOptions(caller.User) {
		http.Error(w, "Sorry, you are not allowed to manage options for this site.", http.StatusForbidden)
		return
	}

	saved := false
	if r.Method == http.MethodPost && r.PostFormValue("hawk_save") != "" {
		if !s.deps.Tokens.Verify(SettingsAction, caller.Subject(), r.PostFormValue("_wpnonce")) {
			s.deps.Log.Warnw("rejected settings save", "user", caller.User)
			http.Error(w, "The link you followed has expired.", http.StatusForbidden)
			return
		}
		for key, field := range map[string]string{
			settings.KeyAPIKey:      fieldAPIKey,
			settings.KeyDefaultTier: fieldTier,
		} {
			if err := s.deps.Options.Set(r.Context(), key, r.PostFormValue(field)); err != nil {
				s.deps.Log.Errorw("failed to save setting", "key", key, "error", err)
				http.Error(w, "failed to save settings", http.StatusInternalServerError)
				return
			}
		}
		s.deps.Log.Infow("settings saved", "user", caller.User)
		saved = true
	}

	cfg, err := s.deps.Options.Load(r.Context())
	if err != nil {
		s.deps.Log.Errorw("failed to load settings", "error", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	s.render(w, "settings.html", settingsView{
		Nonce:  s.deps.Tokens.Create(SettingsAction, caller.Subject()),
		APIKey: cfg.APIKey,
		Tier:   cfg.DefaultTier,
		Tiers:  internal.Tiers,
		Saved:  saved,
	})
}
