package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/langs"
	"github.com/hawknews/hawk-translation/internal/render"
	"github.com/hawknews/hawk-translation/internal/store"
	"github.com/hawknews/hawk-translation/internal/submit"
)

type editView struct {
	Post      *internal.Post
	Body      template.HTML
	Languages []langs.Language
	Selected  string
	Nonce     string
	AjaxURL   string
}

// handleEditPost shows the post edit screen with the translation side box.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	if q.Get("action") != "edit" {
		http.NotFound(w, r)
		return
	}
	postID, err := strconv.ParseInt(q.Get("post"), 10, 64)
	if err != nil || postID <= 0 {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	caller := callerFrom(r.Context())
	if !s.deps.Users.CanEdit(caller.User, postID) {
		http.Error(w, "Sorry, you are not allowed to edit this item.", http.StatusForbidden)
		return
	}

	post, err := s.deps.Posts.GetPost(r.Context(), postID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.deps.Log.Errorw("failed to load post", "post_id", postID, "error", err)
		http.Error(w, "failed to load post", http.StatusInternalServerError)
		return
	}

	selected := langs.Supported[0].Code
	if cfg, err := s.deps.Options.Load(r.Context()); err != nil {
		s.deps.Log.Warnw("failed to load settings", "error", err)
	} else if len(cfg.DefaultLanguages) > 0 && langs.Name(cfg.DefaultLanguages[0]) != "" {
		selected = cfg.DefaultLanguages[0]
	}

	s.render(w, "edit.html", editView{
		Post:      post,
		Body:      template.HTML(render.ToHTML([]byte(post.Body))),
		Languages: langs.Supported,
		Selected:  selected,
		Nonce:     s.deps.Tokens.Create(submit.Action, caller.Subject()),
		AjaxURL:   AjaxPath,
	})
}
