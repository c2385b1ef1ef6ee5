package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/submit"
)

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// handleAjax dispatches admin-ajax.php calls by their action field.
func (s *Server) handleAjax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "0", http.StatusBadRequest)
		return
	}

	switch r.PostFormValue("action") {
	case submit.Action:
		s.handleTranslate(w, r)
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte("0")); err != nil {
			s.deps.Log.Debugw("failed to write response", "path", r.URL.Path, "error", err)
		}
	}
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Translations.Handle(r.Context(), submit.Call{
		Caller:   callerFrom(r.Context()),
		PostID:   parsePostID(r.PostFormValue("post_id")),
		Language: r.PostFormValue("language"),
		Token:    r.PostFormValue("nonce"),
	})

	status := http.StatusOK
	if res.Code == string(submit.CodeInvalidRequest) {
		status = http.StatusForbidden
	}
	s.writeJSON(w, status, toEnvelope(res))
}

// parsePostID reads a positive id; anything else becomes 0, which no post has.
func parsePostID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func toEnvelope(res internal.TranslationResult) envelope {
	if res.Success {
		return envelope{Success: true, Data: map[string]*string{"job_id": res.JobID}}
	}
	return envelope{Data: map[string]string{"error": res.Error}}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.deps.Log.Debugw("failed to write response", "status", status, "error", err)
	}
}
