package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/auth"
	"github.com/hawknews/hawk-translation/internal/nonce"
	"github.com/hawknews/hawk-translation/internal/settings"
	"github.com/hawknews/hawk-translation/internal/store"
	"github.com/hawknews/hawk-translation/internal/submit"
)

const (
	testPassword = "secret"
	testSession  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

type fakeTranslations struct {
	mu    sync.Mutex
	calls []submit.Call
	res   internal.TranslationResult
}

func (f *fakeTranslations) Handle(ctx context.Context, call submit.Call) internal.TranslationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.res
}

type testEnv struct {
	server       *httptest.Server
	tokens       *nonce.Issuer
	settings     *settings.Settings
	store        *store.Store
	translations *fakeTranslations
	postID       int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	users, err := auth.NewDirectory([]auth.User{
		{Name: "admin", Role: auth.RoleAdministrator, PasswordHash: string(hash)},
		{Name: "ed", Role: auth.RoleEditor, PasswordHash: string(hash)},
		{Name: "sub", Role: auth.RoleSubscriber, PasswordHash: string(hash)},
	})
	if err != nil {
		t.Fatalf("failed to build directory: %v", err)
	}

	s, err := store.New(filepath.Join(t.TempDir(), "hawk.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	opts := settings.New(s)
	if err := opts.Install(context.Background()); err != nil {
		t.Fatalf("failed to install settings: %v", err)
	}

	post := &internal.Post{Title: "Council votes", Body: "The **council** voted."}
	if err := s.SavePost(context.Background(), post); err != nil {
		t.Fatalf("failed to save post: %v", err)
	}

	env := &testEnv{
		tokens:       nonce.New("test-secret"),
		settings:     opts,
		store:        s,
		translations: &fakeTranslations{},
		postID:       post.ID,
	}

	srv, err := New(Deps{
		Users:        users,
		Tokens:       env.tokens,
		Options:      opts,
		Posts:        s,
		Translations: env.translations,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	env.server = httptest.NewServer(srv.Routes())
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) token(action, user string) string {
	return e.tokens.Create(action, internal.Caller{User: user, SessionID: testSession}.Subject())
}

func (e *testEnv) do(t *testing.T, method, path, user string, form url.Values) *http.Response {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if user != "" {
		req.SetBasicAuth(user, testPassword)
	}
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testSession})

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(b)
}

func TestAuthenticate_RequiresCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, AdminPath+"?page="+SettingsPage, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Error("expected a basic auth challenge")
	}
}

func TestAuthenticate_IssuesSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+AdminPath+"?page="+SettingsPage, nil)
	req.SetBasicAuth("admin", testPassword)
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a hawk_session cookie")
	}
}

func TestAjax_UnknownAction(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, AjaxPath, "ed", url.Values{"action": {"something_else"}})

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "0" {
		t.Errorf("expected body 0, got %q", body)
	}
}

func TestAjax_Success(t *testing.T) {
	env := newTestEnv(t)
	job := "abc123"
	env.translations.res = internal.TranslationResult{Success: true, JobID: &job}

	resp := env.do(t, http.MethodPost, AjaxPath, "ed", url.Values{
		"action":   {submit.Action},
		"post_id":  {"42"},
		"language": {"es"},
		"nonce":    {"tok"},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := strings.TrimSpace(readBody(t, resp)); body != `{"success":true,"data":{"job_id":"abc123"}}` {
		t.Errorf("unexpected body %s", body)
	}

	if len(env.translations.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(env.translations.calls))
	}
	call := env.translations.calls[0]
	if call.PostID != 42 || call.Language != "es" || call.Token != "tok" {
		t.Errorf("unexpected call %+v", call)
	}
	if call.Caller.User != "ed" || call.Caller.SessionID != testSession {
		t.Errorf("unexpected caller %+v", call.Caller)
	}
}

func TestAjax_NullJobID(t *testing.T) {
	env := newTestEnv(t)
	env.translations.res = internal.TranslationResult{Success: true}

	resp := env.do(t, http.MethodPost, AjaxPath, "ed", url.Values{"action": {submit.Action}})

	if body := strings.TrimSpace(readBody(t, resp)); body != `{"success":true,"data":{"job_id":null}}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestAjax_Failures(t *testing.T) {
	tests := []struct {
		name       string
		res        internal.TranslationResult
		wantStatus int
		wantError  string
	}{
		{"invalid request", internal.TranslationResult{Code: "invalid_request", Error: "invalid request"}, http.StatusForbidden, "invalid request"},
		{"forbidden", internal.TranslationResult{Code: "forbidden", Error: "insufficient permissions"}, http.StatusOK, "insufficient permissions"},
		{"api error", internal.TranslationResult{Code: "api_error", Error: "unsupported language"}, http.StatusOK, "unsupported language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.translations.res = tt.res

			resp := env.do(t, http.MethodPost, AjaxPath, "ed", url.Values{"action": {submit.Action}, "post_id": {"1"}})

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			var env2 struct {
				Success bool              `json:"success"`
				Data    map[string]string `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&env2); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if env2.Success || env2.Data["error"] != tt.wantError {
				t.Errorf("unexpected envelope %+v", env2)
			}
		})
	}
}

func TestParsePostID(t *testing.T) {
	tests := map[string]int64{"7": 7, " 12 ": 12, "": 0, "abc": 0, "-3": 0}
	for in, want := range tests {
		if got := parsePostID(in); got != want {
			t.Errorf("parsePostID(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSettings_GetRendersForm(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, AdminPath+"?page="+SettingsPage, "admin", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	for _, want := range []string{
		`name="hawk_api_key"`,
		`name="hawk_default_tier"`,
		`name="_wpnonce" value="` + env.token(SettingsAction, "admin") + `"`,
		`<option value="instant" selected>Instant (AI only)</option>`,
		`Certified (professional translator)`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if strings.Contains(body, "Settings saved.") {
		t.Error("did not expect a saved notice on GET")
	}
}

func TestSettings_UnknownPage(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, AdminPath+"?page=other", "admin", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSettings_Save(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, AdminPath+"?page="+SettingsPage, "admin", url.Values{
		"hawk_save":         {"1"},
		"_wpnonce":          {env.token(SettingsAction, "admin")},
		"hawk_api_key":      {"  key-<b>123</b> "},
		"hawk_default_tier": {"reviewed"},
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Settings saved.") {
		t.Error("expected saved notice")
	}

	cfg, err := env.settings.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if cfg.APIKey != "key-123" {
		t.Errorf("expected sanitized key, got %q", cfg.APIKey)
	}
	if cfg.DefaultTier != internal.TierReviewed {
		t.Errorf("expected reviewed tier, got %q", cfg.DefaultTier)
	}
}

func TestSettings_SaveRejected(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		token func(e *testEnv) string
	}{
		{"missing token", "admin", func(e *testEnv) string { return "" }},
		{"wrong action", "admin", func(e *testEnv) string { return e.token(submit.Action, "admin") }},
		{"token of another user", "admin", func(e *testEnv) string { return e.token(SettingsAction, "ed") }},
		{"editor", "ed", func(e *testEnv) string { return e.token(SettingsAction, "ed") }},
		{"subscriber", "sub", func(e *testEnv) string { return e.token(SettingsAction, "sub") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp := env.do(t, http.MethodPost, AdminPath+"?page="+SettingsPage, tt.user, url.Values{
				"hawk_save":         {"1"},
				"_wpnonce":          {tt.token(env)},
				"hawk_api_key":      {"stolen"},
				"hawk_default_tier": {"certified"},
			})

			if resp.StatusCode != http.StatusForbidden {
				t.Errorf("expected 403, got %d", resp.StatusCode)
			}
			cfg, err := env.settings.Load(context.Background())
			if err != nil {
				t.Fatalf("failed to load settings: %v", err)
			}
			if cfg.APIKey != "" || cfg.DefaultTier != internal.TierInstant {
				t.Errorf("settings changed: %+v", cfg)
			}
		})
	}
}

func TestEditPost_RendersWidget(t *testing.T) {
	env := newTestEnv(t)
	if err := env.settings.SetDefaultLanguages(context.Background(), []string{"fr", "es"}); err != nil {
		t.Fatalf("failed to set languages: %v", err)
	}

	resp := env.do(t, http.MethodGet, PostPath+"?action=edit&post="+itoa(env.postID), "ed", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)

	for _, want := range []string{
		"Translate this post",
		"Send for translation",
		`<option value="fr" selected>French</option>`,
		`<option value="ht">Haitian Creole</option>`,
		`<option value="ur">Urdu</option>`,
		"<strong>council</strong>",
		env.token(submit.Action, "ed"),
		"Submitting...",
		"Request failed.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if got := strings.Count(body, "<option value="); got != 10 {
		t.Errorf("expected 10 languages, got %d", got)
	}
}

func TestEditPost_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		user string
		path string
		want int
	}{
		{"subscriber", "sub", PostPath + "?action=edit&post=" + itoa(env.postID), http.StatusForbidden},
		{"missing post", "ed", PostPath + "?action=edit&post=9999", http.StatusNotFound},
		{"bad id", "ed", PostPath + "?action=edit&post=abc", http.StatusBadRequest},
		{"other action", "ed", PostPath + "?action=trash&post=" + itoa(env.postID), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, tt.path, tt.user, nil)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
