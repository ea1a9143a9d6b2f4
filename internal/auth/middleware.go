package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/models"
)

const (
	ctxClaimsKey = "auth_claims"

	// AdminOTPHeader carries the one-time code required for admin mutations.
	AdminOTPHeader = "X-Admin-OTP"
)

// Middleware validates bearer tokens and enforces the role and account
// status gates on protected routes.
type Middleware struct {
	tokens          *TokenManager
	logger          *zap.Logger
	adminTOTPSecret string
}

func NewMiddleware(tokens *TokenManager, logger *zap.Logger, adminTOTPSecret string) *Middleware {
	return &Middleware{
		tokens:          tokens,
		logger:          logger,
		adminTOTPSecret: adminTOTPSecret,
	}
}

// Authenticate extracts and validates the Bearer token, loading the claims
// into the request context.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Expected: Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin allows only admin-role tokens through. When an admin TOTP
// secret is configured, mutating requests must also carry a valid one-time
// code in the X-Admin-OTP header.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		if m.adminTOTPSecret != "" && c.Request.Method != http.MethodGet {
			code := c.GetHeader(AdminOTPHeader)
			if !totp.Validate(code, m.adminTOTPSecret) {
				m.logger.Warn("admin OTP validation failed",
					zap.String("user_id", claims.UserID))
				c.JSON(http.StatusForbidden, gin.H{"error": "Valid one-time code required"})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// ClaimsFrom retrieves the validated claims from the request context.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ctxClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}
