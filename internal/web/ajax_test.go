package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hawknews/hawk-translation/internal"
)

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (b brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func newObservedServer(t *testing.T) (*Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := New(Deps{Log: zap.New(core).Sugar()})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, logs
}

func TestWriteJSON_LogsWriteFailure(t *testing.T) {
	srv, logs := newObservedServer(t)
	w := brokenWriter{httptest.NewRecorder()}

	srv.writeJSON(w, http.StatusOK, toEnvelope(internal.TranslationResult{Success: true}))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := logs.FilterMessage("failed to write response").Len(); got != 1 {
		t.Errorf("expected one write failure logged, got %d", got)
	}
}

func TestHandleAjax_LogsUnknownActionWriteFailure(t *testing.T) {
	srv, logs := newObservedServer(t)
	w := brokenWriter{httptest.NewRecorder()}
	r := httptest.NewRequest(http.MethodPost, AjaxPath, strings.NewReader("action=nope"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	srv.handleAjax(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if got := logs.FilterMessage("failed to write response").Len(); got != 1 {
		t.Errorf("expected one write failure logged, got %d", got)
	}
}
