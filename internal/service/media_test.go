package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/service/generation"
)

// mediaStub records what the media service hands to the backend.
type mediaStub struct {
	enhanceCalls int
	lastImage    generation.ImageData
	lastInstr    string
	enhanceErr   error
	generateErr  error
}

func (m *mediaStub) CompleteText(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("not a text backend")
}

func (m *mediaStub) GenerateImage(ctx context.Context, description string) (generation.ImageData, error) {
	if m.generateErr != nil {
		return generation.ImageData{}, m.generateErr
	}
	return generation.ImageData{MIME: "image/png", Data: pngBytes(8, 8)}, nil
}

func (m *mediaStub) EnhanceImage(ctx context.Context, img generation.ImageData, instruction string) (generation.ImageData, error) {
	m.enhanceCalls++
	m.lastImage = img
	m.lastInstr = instruction
	if m.enhanceErr != nil {
		return generation.ImageData{}, m.enhanceErr
	}
	return img, nil
}

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func pngDataURI(w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(w, h))
}

func newMediaService(t *testing.T, backend generation.Backend, maxEdge int) *MediaService {
	t.Helper()
	nop := zap.NewNop()
	events := NewEventService(setupTestDB(t), nop)
	return NewMediaService(backend, nop, events, maxEdge)
}

func TestEnhanceRejectsBadPayload(t *testing.T) {
	stub := &mediaStub{}
	s := newMediaService(t, stub, 0)

	for _, uri := range []string{"", "not a data uri", "data:image/png;base64,@@@"} {
		var verr *generation.ValidationError
		if _, err := s.Enhance(context.Background(), uri); !errors.As(err, &verr) {
			t.Fatalf("uri %q: expected ValidationError, got %v", uri, err)
		}
	}
	if stub.enhanceCalls != 0 {
		t.Fatalf("backend must not be called on invalid input, got %d calls", stub.enhanceCalls)
	}
}

func TestEnhanceUsesFixedInstruction(t *testing.T) {
	stub := &mediaStub{}
	s := newMediaService(t, stub, 128)

	out, err := s.Enhance(context.Background(), pngDataURI(16, 16))
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if stub.lastInstr != generation.EnhanceInstruction {
		t.Fatalf("unexpected instruction: %q", stub.lastInstr)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Fatalf("expected a png data URI, got %q", out)
	}
	// Within bounds, the original bytes go upstream untouched.
	if !bytes.Equal(stub.lastImage.Data, pngBytes(16, 16)) {
		t.Fatal("in-bounds image must not be re-encoded")
	}
}

func TestEnhanceDownscalesOversizedImage(t *testing.T) {
	stub := &mediaStub{}
	s := newMediaService(t, stub, 16)

	if _, err := s.Enhance(context.Background(), pngDataURI(64, 32)); err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(stub.lastImage.Data))
	if err != nil {
		t.Fatalf("backend did not receive a valid png: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() > 16 || b.Dy() > 16 {
		t.Fatalf("image not downscaled: %dx%d", b.Dx(), b.Dy())
	}
}

func TestEnhanceBackendFailure(t *testing.T) {
	stub := &mediaStub{enhanceErr: fmt.Errorf("upstream timeout")}
	s := newMediaService(t, stub, 128)

	_, err := s.Enhance(context.Background(), pngDataURI(8, 8))
	var gerr *generation.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if gerr.Op != "enhance" {
		t.Fatalf("unexpected op: %s", gerr.Op)
	}
}

func TestGenerateFromDescription(t *testing.T) {
	stub := &mediaStub{}
	s := newMediaService(t, stub, 128)

	var verr *generation.ValidationError
	if _, err := s.GenerateFromDescription(context.Background(), ""); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	out, err := s.GenerateFromDescription(context.Background(), "a bakery storefront at dawn")
	if err != nil {
		t.Fatalf("GenerateFromDescription failed: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Fatalf("expected a png data URI, got %q", out)
	}

	stub.generateErr = fmt.Errorf("quota exceeded")
	var gerr *generation.GenerationError
	if _, err := s.GenerateFromDescription(context.Background(), "x"); !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}
