package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/auth"
	"github.com/vitrinalab/vitrina/internal/models"
	"github.com/vitrinalab/vitrina/internal/service"
	"github.com/vitrinalab/vitrina/internal/service/generation"
)

type generateRequest struct {
	Content   models.DraftContent `json:"content" binding:"required"`
	Platforms []string            `json:"platforms" binding:"required,min=1,dive,platform"`
}

type platformResultResponse struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

type generateResponse struct {
	Cycle   uint64                            `json:"cycle"`
	Stale   bool                              `json:"stale"`
	Results map[string]platformResultResponse `json:"results"`
}

func (s *Server) handleGenerateContent(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platforms, err := parsePlatforms(req.Platforms)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.ClaimsFrom(c)
	batch, err := s.Orchestrator.GenerateForPlatforms(c.Request.Context(), claims.UserID, req.Content, platforms)
	if err != nil {
		var verr *generation.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
			return
		}
		s.Logger.Error("Generation batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate content"})
		return
	}

	for _, platform := range batch.Failed() {
		s.Events.Record(models.EventLevelError, "generation", "platform generation failed",
			batch.Results[platform].Err.Error(),
			service.WithPlatform(platform))
	}

	resp := generateResponse{
		Cycle:   batch.Token,
		Stale:   !s.Orchestrator.Latest(claims.UserID, batch.Token),
		Results: make(map[string]platformResultResponse, len(batch.Results)),
	}
	for platform, result := range batch.Results {
		entry := platformResultResponse{Content: result.Content}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		resp.Results[platform.String()] = entry
	}

	c.JSON(http.StatusOK, resp)
}

type suggestionsRequest struct {
	Platform string `json:"platform" binding:"required,platform"`
	Content  string `json:"content" binding:"required"`
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := s.Suggester.Suggest(c.Request.Context(), platform, req.Content)
	if err != nil {
		s.respondGenerationError(c, err, "Failed to get suggestions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type enhanceRequest struct {
	PhotoDataURI string `json:"photo_data_uri" binding:"required"`
}

func (s *Server) handleEnhanceImage(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enhanced, err := s.Media.Enhance(c.Request.Context(), req.PhotoDataURI)
	if err != nil {
		s.respondGenerationError(c, err, "Failed to enhance image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_data_uri": enhanced})
}

type imageGenerateRequest struct {
	Description string `json:"description" binding:"required"`
}

func (s *Server) handleGenerateImage(c *gin.Context) {
	var req imageGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataURI, err := s.Media.GenerateFromDescription(c.Request.Context(), req.Description)
	if err != nil {
		s.respondGenerationError(c, err, "Failed to generate image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_data_uri": dataURI})
}

// respondGenerationError maps the generation error taxonomy onto HTTP codes:
// caller mistakes are 400, upstream model failures are 502.
func (s *Server) respondGenerationError(c *gin.Context, err error, fallback string) {
	var verr *generation.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
		return
	}

	var gerr *generation.GenerationError
	if errors.As(err, &gerr) {
		s.Logger.Warn("Upstream generation failure", zap.Error(gerr))
		c.JSON(http.StatusBadGateway, gin.H{"error": gerr.Error()})
		return
	}

	s.Logger.Error(fallback, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func parsePlatforms(tags []string) ([]models.Platform, error) {
	platforms := make([]models.Platform, 0, len(tags))
	for _, tag := range tags {
		p, err := models.ParsePlatform(tag)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
