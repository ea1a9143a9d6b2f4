package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Accounts.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		}
		s.Logger.Error("Failed to register account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountPending):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is awaiting approval"})
		case errors.Is(err, service.ErrAccountRejected):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account was rejected"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		default:
			s.Logger.Error("Failed to authenticate", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
		}
		return
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.Logger.Error("Failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
