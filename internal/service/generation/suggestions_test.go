package generation

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
)

func TestSuggestReturnsOrderedList(t *testing.T) {
	backend := &stubBackend{
		textFn: func(_ context.Context, _ string) (string, error) {
			return "1. Add #panfresco and #arica hashtags.\n2. Open with a question.\n3) Close with an emoji.", nil
		},
	}
	s := NewSuggester(backend, zap.NewNop())

	got, err := s.Suggest(context.Background(), models.PlatformInstagram, "Fresh bread every morning")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	want := []string{
		"Add #panfresco and #arica hashtags.",
		"Open with a question.",
		"Close with an emoji.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected suggestions:\ngot  %v\nwant %v", got, want)
	}
}

func TestSuggestEmptyContentIsCallerError(t *testing.T) {
	backend := &stubBackend{}
	s := NewSuggester(backend, zap.NewNop())

	_, err := s.Suggest(context.Background(), models.PlatformFacebook, "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if backend.calls.Load() != 0 {
		t.Fatal("validation failure must not issue a network call")
	}
}

func TestSuggestMarketplaceRejected(t *testing.T) {
	backend := &stubBackend{}
	s := NewSuggester(backend, zap.NewNop())

	_, err := s.Suggest(context.Background(), models.PlatformMarketplace, "Artisan bread baked daily")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if backend.calls.Load() != 0 {
		t.Fatal("marketplace suggestion request must not issue a network call")
	}
}

func TestSuggestUpstreamFailure(t *testing.T) {
	backend := &stubBackend{
		textFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("model offline")
		},
	}
	s := NewSuggester(backend, zap.NewNop())

	_, err := s.Suggest(context.Background(), models.PlatformFacebook, "content")
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestParseNumberedList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "plain numbered list",
			raw:  "1. First\n2. Second",
			want: []string{"First", "Second"},
		},
		{
			name: "continuation lines join the previous item",
			raw:  "1. First line\nstill first\n2. Second",
			want: []string{"First line still first", "Second"},
		},
		{
			name: "unnumbered completion kept as one item",
			raw:  "Just one paragraph of advice",
			want: []string{"Just one paragraph of advice"},
		},
		{
			name: "blank lines ignored",
			raw:  "\n1. First\n\n2. Second\n",
			want: []string{"First", "Second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNumberedList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
