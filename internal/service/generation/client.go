// Package generation adapts a structured business draft into
// platform-specific copy through a hosted generative model.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vitrinalab/vitrina/internal/models"
)

var (
	errEmptyCompletion = errors.New("model returned empty completion")
	errNoImage         = errors.New("model returned no image")
)

// Backend is the minimal surface of the hosted generative model. The OpenAI
// implementation lives in openai.go; tests swap in mockBackend.
type Backend interface {
	// CompleteText sends a fully-interpolated prompt and returns the
	// completion text.
	CompleteText(ctx context.Context, prompt string) (string, error)
	// GenerateImage creates a new image from a text description.
	GenerateImage(ctx context.Context, description string) (ImageData, error)
	// EnhanceImage returns a replacement for the given image following the
	// instruction.
	EnhanceImage(ctx context.Context, image ImageData, instruction string) (ImageData, error)
}

// GenerationError wraps any upstream model failure, including calls that
// succeed at the transport level but return no usable output. There is no
// retry policy; callers surface the error and wait for the user to re-trigger.
type GenerationError struct {
	Op       string
	Platform models.Platform
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("generation %s failed for %s: %v", e.Op, e.Platform, e.Err)
	}
	return fmt.Sprintf("generation %s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError marks a precondition violation by the caller, raised before
// any network call is issued.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ImageData is an image payload with its MIME type, exchanged with clients as
// a data URI ("data:<mime>;base64,<payload>").
type ImageData struct {
	MIME string
	Data []byte
}

// ParseImageDataURI decodes a base64 data URI into an ImageData.
func ParseImageDataURI(uri string) (ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ImageData{}, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageData{}, fmt.Errorf("malformed data URI: missing payload")
	}

	mime, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return ImageData{}, fmt.Errorf("malformed data URI: expected base64 encoding")
	}
	if !strings.HasPrefix(mime, "image/") {
		return ImageData{}, fmt.Errorf("unsupported media type %q", mime)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImageData{}, fmt.Errorf("malformed data URI payload: %w", err)
	}

	return ImageData{MIME: mime, Data: data}, nil
}

// DataURI encodes the image back into the data-URI convention.
func (d ImageData) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", d.MIME, base64.StdEncoding.EncodeToString(d.Data))
}
