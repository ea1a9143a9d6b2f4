package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/auth"
	"github.com/vitrinalab/vitrina/internal/models"
	"github.com/vitrinalab/vitrina/internal/service"
)

// pipelineSecretHeader authenticates status callbacks from the downstream
// production pipeline.
const pipelineSecretHeader = "X-Pipeline-Secret"

type submitDraftRequest struct {
	Title           string              `json:"title" binding:"required,min=2"`
	City            string              `json:"city"`
	Content         models.DraftContent `json:"content" binding:"required"`
	Platforms       []string            `json:"platforms" binding:"required,min=1,dive,platform"`
	PlatformContent map[string]string   `json:"platform_content"`
	MediaURLs       []string            `json:"media_urls"`
	ScheduledAt     *time.Time          `json:"scheduled_at"`
}

func (s *Server) handleSubmitDraft(c *gin.Context) {
	var req submitDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platforms, err := parsePlatforms(req.Platforms)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentMap := make(models.ContentMap, len(req.PlatformContent))
	for tag, text := range req.PlatformContent {
		p, err := models.ParsePlatform(tag)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		contentMap[p] = text
	}

	claims, _ := auth.ClaimsFrom(c)
	draft, err := s.Drafts.Submit(service.DraftSubmission{
		UserID:          claims.UserID,
		Title:           req.Title,
		City:            req.City,
		Content:         req.Content,
		Platforms:       platforms,
		PlatformContent: contentMap,
		MediaURLs:       req.MediaURLs,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		s.Logger.Error("Failed to submit draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit draft"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"draft": draft})
}

func (s *Server) handleListDrafts(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)

	drafts, err := s.Drafts.ListByUser(claims.UserID)
	if err != nil {
		s.Logger.Error("Failed to list drafts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list drafts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

func (s *Server) handleGetDraft(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)

	draft, err := s.Drafts.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
			return
		}
		s.Logger.Error("Failed to get draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get draft"})
		return
	}

	if draft.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

type statusCallbackRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message"`
}

func (s *Server) handleStatusCallback(c *gin.Context) {
	secret := s.Config.Dispatcher.CallbackSecret
	provided := c.GetHeader(pipelineSecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid pipeline secret"})
		return
	}

	var req statusCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseDraftStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := s.Drafts.UpdateStatus(c.Param("id"), status, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			s.Logger.Error("Failed to update draft status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update draft status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
