package generation

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
)

// PlatformResult is the outcome of one platform's generation request. Exactly
// one of Content/Err is meaningful.
type PlatformResult struct {
	Platform models.Platform `json:"platform"`
	Content  string          `json:"content,omitempty"`
	Err      error           `json:"-"`
}

// Batch is the merged result of one generation cycle. Its key set always
// equals the requested platform set: failed platforms carry an explicit
// error, they are never silently dropped.
type Batch struct {
	Token   uint64
	Results map[models.Platform]PlatformResult
}

// ContentMap extracts the successful entries.
func (b *Batch) ContentMap() models.ContentMap {
	out := make(models.ContentMap, len(b.Results))
	for p, r := range b.Results {
		if r.Err == nil {
			out[p] = r.Content
		}
	}
	return out
}

// Failed returns the platforms whose generation call failed.
func (b *Batch) Failed() []models.Platform {
	var failed []models.Platform
	for p, r := range b.Results {
		if r.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// Orchestrator fans a draft out to one generation request per platform and
// merges the results. Each invocation gets a monotonically increasing cycle
// token, scoped per editing session, so callers can discard batches that
// were superseded by a re-trigger while still in flight.
type Orchestrator struct {
	backend Backend
	logger  *zap.Logger
	cycles  sync.Map // session key -> *atomic.Uint64
}

func NewOrchestrator(backend Backend, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		logger:  logger,
	}
}

func (o *Orchestrator) counter(session string) *atomic.Uint64 {
	value, _ := o.cycles.LoadOrStore(session, new(atomic.Uint64))
	return value.(*atomic.Uint64)
}

// GenerateForPlatforms adapts the structured answers for every requested
// platform. All model-backed requests are issued before any is awaited, and a
// single platform's failure never blocks or cancels its siblings. The
// marketplace entry is a verbatim copy of the offering field with no model
// call. An empty platform set is a caller error and issues no network calls.
func (o *Orchestrator) GenerateForPlatforms(ctx context.Context, session string, content models.DraftContent, platforms []models.Platform) (*Batch, error) {
	if len(platforms) == 0 {
		return nil, &ValidationError{Msg: "at least one platform must be selected"}
	}

	requested := dedupe(platforms)
	token := o.counter(session).Add(1)
	draft := AssembleDraft(content)

	type slot struct {
		platform models.Platform
		content  string
		err      error
	}

	var generated []models.Platform
	for _, p := range requested {
		if p.RequiresGeneration() {
			generated = append(generated, p)
		}
	}

	slots := make([]slot, len(generated))
	var wg sync.WaitGroup
	for i, platform := range generated {
		wg.Add(1)
		go func(i int, platform models.Platform) {
			defer wg.Done()

			prompt, err := PromptFor(platform, draft)
			if err != nil {
				slots[i] = slot{platform: platform, err: &GenerationError{Op: "text", Platform: platform, Err: err}}
				return
			}

			text, err := o.backend.CompleteText(ctx, prompt)
			if err != nil {
				slots[i] = slot{platform: platform, err: &GenerationError{Op: "text", Platform: platform, Err: err}}
				return
			}
			if strings.TrimSpace(text) == "" {
				slots[i] = slot{platform: platform, err: &GenerationError{Op: "text", Platform: platform, Err: errEmptyCompletion}}
				return
			}

			slots[i] = slot{platform: platform, content: strings.TrimSpace(text)}
		}(i, platform)
	}
	wg.Wait()

	results := make(map[models.Platform]PlatformResult, len(requested))
	for _, s := range slots {
		if s.err != nil {
			o.logger.Warn("platform generation failed",
				zap.String("platform", s.platform.String()),
				zap.Uint64("cycle", token),
				zap.Error(s.err))
			results[s.platform] = PlatformResult{Platform: s.platform, Err: s.err}
			continue
		}
		results[s.platform] = PlatformResult{Platform: s.platform, Content: s.content}
	}

	if contains(requested, models.PlatformMarketplace) {
		results[models.PlatformMarketplace] = PlatformResult{
			Platform: models.PlatformMarketplace,
			Content:  content.Offering,
		}
	}

	o.logger.Info("generation cycle completed",
		zap.Uint64("cycle", token),
		zap.Int("platforms", len(results)),
		zap.Int("failed", len(results)-len((&Batch{Results: results}).ContentMap())))

	return &Batch{Token: token, Results: results}, nil
}

// Latest reports whether the given cycle token is the most recently issued
// one for the session. Callers use it to drop stale batches so a
// re-triggered generation always wins over one that was still in flight.
func (o *Orchestrator) Latest(session string, token uint64) bool {
	return token == o.counter(session).Load()
}

func dedupe(platforms []models.Platform) []models.Platform {
	seen := make(map[models.Platform]struct{}, len(platforms))
	out := make([]models.Platform, 0, len(platforms))
	for _, p := range platforms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func contains(platforms []models.Platform, p models.Platform) bool {
	for _, item := range platforms {
		if item == p {
			return true
		}
	}
	return false
}
