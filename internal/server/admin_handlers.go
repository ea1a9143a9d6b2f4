package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
	"github.com/vitrinalab/vitrina/internal/service"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.Accounts.List()
	if err != nil {
		s.Logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleSetUserStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseUserStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Accounts.SetStatus(c.Param("id"), status)
	if err != nil {
		s.respondAccountError(c, err, "Failed to update user status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) handleSetUserRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Accounts.SetRole(c.Param("id"), role)
	if err != nil {
		s.respondAccountError(c, err, "Failed to update user role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type setTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

func (s *Server) handleSetUserType(c *gin.Context) {
	var req setTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userType, err := models.ParseUserType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Accounts.SetType(c.Param("id"), userType)
	if err != nil {
		s.respondAccountError(c, err, "Failed to update user type")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleListAllDrafts(c *gin.Context) {
	drafts, err := s.Drafts.ListAll()
	if err != nil {
		s.Logger.Error("Failed to list drafts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list drafts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

func (s *Server) handleListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := s.Events.Recent(limit)
	if err != nil {
		s.Logger.Error("Failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) respondAccountError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	s.Logger.Error(fallback, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
