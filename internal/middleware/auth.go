package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"memestash/api/internal/models"
	"memestash/api/internal/security"
)

const currentUserKey = "current_user"

// UserSource resolves an authenticated user id to a full user record.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth requires a valid bearer token and attaches the user to the context.
func Auth(jwtSecret string, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtSecret, users)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account is deactivated"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid bearer token is presented
// but lets anonymous requests through. Share-link resolution uses it: the
// visibility gate decides later whether an identity was needed.
func OptionalAuth(jwtSecret string, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := resolveUser(c, jwtSecret, users); ok && user.IsActive {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

func resolveUser(c *gin.Context, jwtSecret string, users UserSource) (models.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return models.User{}, false
	}

	claims, err := security.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
	if err != nil {
		return models.User{}, false
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// CurrentUser returns the authenticated user attached by Auth or
// OptionalAuth, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
