package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"friendgraph/models"
	"friendgraph/utils"
)

const (
	userIDKey = "user_id"
	userKey   = "user"
)

// UserLoader resolves the account behind a verified token.
type UserLoader interface {
	ActiveUser(ctx context.Context, id string) (*models.User, error)
}

func AuthMiddleware(tokens *utils.TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]), utils.TokenTypeAccess)
		if err != nil {
			utils.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.ActiveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.Unauthorized(c, "user not found or inactive")
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CurrentUser returns the user loaded by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
