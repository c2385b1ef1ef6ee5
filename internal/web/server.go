// Package web is the admin host: the settings page, the post edit screen with
// the translation side box, and the async endpoint the side box calls.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/auth"
	"github.com/hawknews/hawk-translation/internal/settings"
	"github.com/hawknews/hawk-translation/internal/submit"
)

const (
	SessionCookie = "hawk_session"

	AdminPath = "/wp-admin/options-general.php"
	PostPath  = "/wp-admin/post.php"
	AjaxPath  = "/wp-admin/admin-ajax.php"
)

//go:embed templates/*.html
var templateFS embed.FS

type Users interface {
	Authenticate(name, password string) (auth.User, bool)
	CanEdit(user string, postID int64) bool
	CanManageOptions(user string) bool
}

type Tokens interface {
	Create(action, subject string) string
	Verify(action, subject, token string) bool
}

type Options interface {
	Load(ctx context.Context) (settings.Configuration, error)
	Set(ctx context.Context, key, value string) error
}

type Posts interface {
	GetPost(ctx context.Context, id int64) (*internal.Post, error)
}

// Translations handles one call from the side box. *submit.Handler satisfies it.
type Translations interface {
	Handle(ctx context.Context, call submit.Call) internal.TranslationResult
}

type Deps struct {
	Users        Users
	Tokens       Tokens
	Options      Options
	Posts        Posts
	Translations Translations
	Log          *zap.SugaredLogger
}

type Server struct {
	deps Deps
	tmpl *template.Template
}

func New(deps Deps) (*Server, error) {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{deps: deps, tmpl: tmpl}, nil
}

// Routes returns the host's handler with authentication, sessions and
// request logging applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(AdminPath, s.handleSettings)
	mux.HandleFunc(PostPath, s.handleEditPost)
	mux.HandleFunc("POST "+AjaxPath, s.handleAjax)

	return s.logRequests(s.authenticate(mux))
}

type callerKey struct{}

func callerFrom(ctx context.Context) internal.Caller {
	c, _ := ctx.Value(callerKey{}).(internal.Caller)
	return c
}

// authenticate resolves the user from HTTP basic auth and attaches a session
// id, issuing a new hawk_session cookie when the request carries none.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		var user auth.User
		if ok {
			user, ok = s.deps.Users.Authenticate(name, password)
		}
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="hawk-translation"`)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		sessionID := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				sessionID = id.String()
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), callerKey{}, internal.Caller{User: user.Name, SessionID: sessionID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.deps.Log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency", time.Since(start),
		)
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.deps.Log.Errorw("failed to render template", "template", name, "error", err)
	}
}
