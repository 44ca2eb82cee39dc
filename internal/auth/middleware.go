package auth

import (
	"errors"
	"net/http"
	"strings"

	"slotbook/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

// Middleware resolves the bearer credential into an authenticated actor and
// stores it on the request context. Requests without a valid access token are
// rejected with 401.
func Middleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Error(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Error(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Error(c, http.StatusUnauthorized, "Token is empty")
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				api.Error(c, http.StatusUnauthorized, "Token expired")
			default:
				api.Error(c, http.StatusUnauthorized, "Invalid or malformed token")
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			api.Error(c, http.StatusUnauthorized, "Access token required")
			c.Abort()
			return
		}

		role, err := ParseRole(claims.Role)
		if err != nil {
			api.Error(c, http.StatusUnauthorized, "Invalid or malformed token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, role)

		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated actor
// holds one of the given roles.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetRole(c)
		if !exists {
			api.Error(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		api.Error(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetRole(c *gin.Context) (Role, bool) {
	role, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}

	r, ok := role.(Role)
	if !ok {
		return "", false
	}

	return r, true
}
