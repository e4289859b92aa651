package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/httpx"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// Middleware validates the bearer token and stores the caller identity in the
// request context. The engine trusts the user id it carries.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httpx.Error(c, apperr.New(apperr.Unauthorized, "authorization header is required"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			httpx.Error(c, apperr.New(apperr.Unauthorized, "authorization header must start with Bearer"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			httpx.Error(c, apperr.Wrap(apperr.Unauthorized, "invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != role {
			httpx.Error(c, apperr.New(apperr.Forbidden, "you do not have permission to access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}
