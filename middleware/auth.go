package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"libretrack/config"
	"libretrack/models"
	"libretrack/services"
	"libretrack/utils"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxToken  = "token"
)

// Auth validates the bearer token, rejects revoked ones, and stashes
// the caller's identity and role in the request context.
func Auth(jwtService *config.JWTService, authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.Unauthorized(c, "missing authorization token")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			utils.Unauthorized(c, "token expired or invalid, please log in again")
			c.Abort()
			return
		}
		if authService.TokenRevoked(c.Request.Context(), token) {
			utils.Unauthorized(c, "token has been revoked")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, string(claims.Role))
		c.Set(CtxToken, token)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. It runs after Auth and rejects
// any caller whose role is not the admin enum value.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if models.Role(c.GetString(CtxRole)) != models.RoleAdmin {
			utils.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
