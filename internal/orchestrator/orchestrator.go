// Package orchestrator submits one post for several target languages at once.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/hawknews/hawk-translation/internal"
)

// Submitter sends one post for one language. *submit.Handler satisfies it.
type Submitter interface {
	Submit(ctx context.Context, caller internal.Caller, postID int64, language string) internal.TranslationResult
}

type OrchestratorConfig struct {
	// Timeout bounds each language's submission. Zero means no extra bound.
	Timeout time.Duration
}

// LanguageResult pairs a target language with its submission outcome.
type LanguageResult struct {
	Language string
	Result   internal.TranslationResult
}

type OrchestratorResult struct {
	Results   []LanguageResult
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	submitter Submitter
	config    OrchestratorConfig
}

func New(submitter Submitter, config OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		config:    config,
	}
}

// Execute submits postID for every language concurrently. Results keep the
// order of languages. Each language gets exactly one attempt.
func (o *Orchestrator) Execute(ctx context.Context, caller internal.Caller, postID int64, languages []string) *OrchestratorResult {
	result := &OrchestratorResult{
		Results: make([]LanguageResult, len(languages)),
	}

	var wg sync.WaitGroup
	for i, lang := range languages {
		wg.Add(1)
		go func(index int, language string) {
			defer wg.Done()

			langCtx := ctx
			if o.config.Timeout > 0 {
				var cancel context.CancelFunc
				langCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
				defer cancel()
			}

			result.Results[index] = LanguageResult{
				Language: language,
				Result:   o.submitter.Submit(langCtx, caller, postID, language),
			}
		}(i, lang)
	}
	wg.Wait()

	for _, r := range result.Results {
		if r.Result.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result
}
