package generation

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
)

var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// Suggester requests improvement suggestions (phrasing, hashtags, emoji) for
// content that has already been generated. It never mutates the content.
type Suggester struct {
	backend Backend
	logger  *zap.Logger
}

func NewSuggester(backend Backend, logger *zap.Logger) *Suggester {
	return &Suggester{backend: backend, logger: logger}
}

// Suggest returns an ordered list of improvement suggestions tailored to the
// platform's norms. Empty content and the marketplace platform are caller
// errors and issue no network call.
func (s *Suggester) Suggest(ctx context.Context, platform models.Platform, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Msg: "content must not be empty"}
	}
	if !platform.RequiresGeneration() {
		return nil, &ValidationError{Msg: "suggestions are not available for marketplace listings"}
	}

	raw, err := s.backend.CompleteText(ctx, SuggestionPromptFor(platform, content))
	if err != nil {
		return nil, &GenerationError{Op: "suggestions", Platform: platform, Err: err}
	}

	suggestions := parseNumberedList(raw)
	if len(suggestions) == 0 {
		return nil, &GenerationError{Op: "suggestions", Platform: platform, Err: errEmptyCompletion}
	}

	s.logger.Debug("suggestions generated",
		zap.String("platform", platform.String()),
		zap.Int("count", len(suggestions)))

	return suggestions, nil
}

// parseNumberedList splits a "1. ... 2. ..." completion into its items,
// preserving order. Lines without a numeric prefix continue the previous
// item; a completion with no numbered lines at all is kept as one item.
func parseNumberedList(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if numberedLine.MatchString(trimmed) {
			items = append(items, numberedLine.ReplaceAllString(trimmed, ""))
			continue
		}
		if len(items) == 0 {
			items = append(items, trimmed)
			continue
		}
		items[len(items)-1] = items[len(items)-1] + " " + trimmed
	}
	return items
}
