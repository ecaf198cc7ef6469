package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/pkg/errors"
	"github.com/soundbay/soundbay/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)

		c.Next()
	}
}

// OptionalAuth propagates identity when a valid bearer token is present but
// lets anonymous requests through. Invalid tokens are treated as anonymous.
func OptionalAuth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
			if claims, err := jwt.ValidateAccessToken(strings.TrimSpace(authz[7:])); err == nil {
				c.Set(CtxClaimsKey, claims)
				c.Set(CtxUserIDKey, claims.UserID)
				c.Set(CtxRoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if !strings.EqualFold(role, models.RoleAdmin) {
			response.Error(c, errors.ErrNotAdmin)
			c.Abort()
			return
		}
		c.Next()
	}
}
