// Package submit sends a post to the Hawk translation API on behalf of an
// editor and turns the outcome into the small result the editor widget shows.
//
// Every check is a hard stop, in this order: anti-forgery token, edit
// permission, post lookup, configured API key. Only then is the post rendered
// and a single POST issued. Nothing is retried and nothing is persisted.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/hawk"
	"github.com/hawknews/hawk-translation/internal/settings"
	"github.com/hawknews/hawk-translation/internal/store"
)

// Action is the name tokens for this operation are scoped to.
const Action = "hawk_translate"

type Authorizer interface {
	CanEdit(user string, postID int64) bool
}

type TokenValidator interface {
	Verify(action, subject, token string) bool
}

type Posts interface {
	GetPost(ctx context.Context, id int64) (*internal.Post, error)
}

type Renderer interface {
	Render(p *internal.Post) string
}

type Linker interface {
	For(p *internal.Post) string
}

type ConfigSource interface {
	Load(ctx context.Context) (settings.Configuration, error)
}

type Translator interface {
	Translate(ctx context.Context, target hawk.Target, req internal.TranslationRequest) (*hawk.Response, error)
}

// SourceChecker reports whether content is written in lang.
type SourceChecker interface {
	IsValid(content, lang string) (bool, error)
}

// Deps are the collaborators a Handler needs. SourceCheck is optional.
type Deps struct {
	Auth        Authorizer
	Tokens      TokenValidator
	Posts       Posts
	Renderer    Renderer
	Links       Linker
	Config      ConfigSource
	Translator  Translator
	SourceCheck SourceChecker
	Log         *zap.SugaredLogger
}

type Handler struct {
	deps     Deps
	inflight singleflight.Group
}

func New(deps Deps) *Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	return &Handler{deps: deps}
}

// Call is one request from the editor widget.
type Call struct {
	Caller   internal.Caller
	PostID   int64
	Language string
	Token    string
}

// Handle validates the anti-forgery token and then submits the post.
func (h *Handler) Handle(ctx context.Context, call Call) internal.TranslationResult {
	if !h.deps.Tokens.Verify(Action, call.Caller.Subject(), call.Token) {
		h.deps.Log.Warnw("rejected translation request", "user", call.Caller.User, "post_id", call.PostID, "code", CodeInvalidRequest)
		return Result(nil, errInvalidRequest)
	}
	return h.Submit(ctx, call.Caller, call.PostID, call.Language)
}

// Submit runs every step after token validation. It is used directly by
// trusted callers that hold no browser token.
func (h *Handler) Submit(ctx context.Context, caller internal.Caller, postID int64, language string) internal.TranslationResult {
	start := time.Now()
	language = strings.ToLower(settings.Sanitize(language))

	jobID, err := h.submit(ctx, caller, postID, language)
	res := Result(jobID, err)

	fields := []any{
		"user", caller.User,
		"post_id", postID,
		"language", language,
		"latency", time.Since(start),
	}
	if err != nil {
		h.deps.Log.Warnw("translation request failed", append(fields, "code", res.Code, "error", err)...)
	} else {
		h.deps.Log.Infow("translation submitted", append(fields, "job_id", derefJob(jobID))...)
	}
	return res
}

func (h *Handler) submit(ctx context.Context, caller internal.Caller, postID int64, language string) (*string, error) {
	if !h.deps.Auth.CanEdit(caller.User, postID) {
		return nil, errForbidden
	}

	// Concurrent submissions of the same post and language share one POST.
	// The shared call outlives any single caller; the client timeout bounds it.
	key := fmt.Sprintf("%d|%s", postID, language)
	ch := h.inflight.DoChan(key, func() (any, error) {
		return h.send(context.WithoutCancel(ctx), postID, language)
	})

	select {
	case res := <-ch:
		if res.Shared {
			h.deps.Log.Debugw("joined in-flight translation request", "post_id", postID, "language", language)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*string), nil
	case <-ctx.Done():
		return nil, &Error{Code: CodeTransport, Message: ctx.Err().Error(), Err: ctx.Err()}
	}
}

func (h *Handler) send(ctx context.Context, postID int64, language string) (*string, error) {
	post, err := h.deps.Posts.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, internalError(fmt.Errorf("failed to load post %d: %w", postID, err))
	}

	cfg, err := h.deps.Config.Load(ctx)
	if err != nil {
		return nil, internalError(fmt.Errorf("failed to load settings: %w", err))
	}
	if cfg.APIKey == "" {
		return nil, errUnconfigured
	}

	content := h.deps.Renderer.Render(post)
	if h.deps.SourceCheck != nil {
		if ok, err := h.deps.SourceCheck.IsValid(content, internal.SourceLanguage); !ok {
			h.deps.Log.Warnw("post content does not look like the source language", "post_id", postID, "error", err)
		}
	}

	req := internal.TranslationRequest{
		Content:        content,
		SourceLanguage: internal.SourceLanguage,
		TargetLanguage: language,
		Tier:           cfg.DefaultTier,
		Metadata: internal.Metadata{
			Headline:  post.Title,
			SourceURL: h.deps.Links.For(post),
		},
	}

	resp, err := h.deps.Translator.Translate(ctx, hawk.Target{BaseURL: cfg.APIBaseURL, APIKey: cfg.APIKey}, req)
	if err != nil {
		return nil, classify(err)
	}
	return resp.JobID, nil
}

func derefJob(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
