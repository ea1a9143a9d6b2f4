package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
	"github.com/vitrinalab/vitrina/internal/service/generation"
)

// MediaService handles the image side of a draft: AI enhancement of an
// uploaded photo and image generation from a description. Enhancement is a
// pure input-to-output call; on failure the caller's current preview is
// untouched because nothing here holds state.
type MediaService struct {
	backend generation.Backend
	logger  *zap.Logger
	events  *EventService
	maxEdge int
}

func NewMediaService(backend generation.Backend, logger *zap.Logger, events *EventService, maxEdgePixels int) *MediaService {
	if maxEdgePixels <= 0 {
		maxEdgePixels = 2048
	}
	return &MediaService{
		backend: backend,
		logger:  logger,
		events:  events,
		maxEdge: maxEdgePixels,
	}
}

// Enhance sends the image to the model with the fixed enhancement
// instruction and returns the replacement as a data URI. Oversized images
// are downscaled first so the upstream call stays within payload limits.
func (s *MediaService) Enhance(ctx context.Context, dataURI string) (string, error) {
	img, err := generation.ParseImageDataURI(dataURI)
	if err != nil {
		return "", &generation.ValidationError{Msg: fmt.Sprintf("invalid image payload: %v", err)}
	}

	img, err = s.bound(img)
	if err != nil {
		return "", &generation.ValidationError{Msg: fmt.Sprintf("unreadable image payload: %v", err)}
	}

	enhanced, err := s.backend.EnhanceImage(ctx, img, generation.EnhanceInstruction)
	if err != nil {
		s.events.Record(models.EventLevelError, "media", "image enhancement failed", err.Error())
		return "", &generation.GenerationError{Op: "enhance", Err: err}
	}
	if len(enhanced.Data) == 0 {
		s.events.Record(models.EventLevelError, "media", "image enhancement failed", "empty image returned")
		return "", &generation.GenerationError{Op: "enhance", Err: fmt.Errorf("model returned an empty image")}
	}

	return enhanced.DataURI(), nil
}

// GenerateFromDescription asks the model for a fresh image.
func (s *MediaService) GenerateFromDescription(ctx context.Context, description string) (string, error) {
	if description == "" {
		return "", &generation.ValidationError{Msg: "image description must not be empty"}
	}

	img, err := s.backend.GenerateImage(ctx, description)
	if err != nil {
		s.events.Record(models.EventLevelError, "media", "image generation failed", err.Error())
		return "", &generation.GenerationError{Op: "image", Err: err}
	}

	return img.DataURI(), nil
}

// bound downscales the image when its longest edge exceeds the configured
// limit, re-encoding in the source format. Images already within bounds pass
// through untouched.
func (s *MediaService) bound(img generation.ImageData) (generation.ImageData, error) {
	decoded, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return generation.ImageData{}, err
	}

	b := decoded.Bounds()
	if b.Dx() <= s.maxEdge && b.Dy() <= s.maxEdge {
		return img, nil
	}

	resized := imaging.Fit(decoded, s.maxEdge, s.maxEdge, imaging.Lanczos)

	format := imaging.PNG
	mime := "image/png"
	if img.MIME == "image/jpeg" {
		format = imaging.JPEG
		mime = "image/jpeg"
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, format); err != nil {
		return generation.ImageData{}, err
	}

	s.logger.Debug("image downscaled before enhancement",
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Int("max_edge", s.maxEdge))

	return generation.ImageData{MIME: mime, Data: out.Bytes()}, nil
}
