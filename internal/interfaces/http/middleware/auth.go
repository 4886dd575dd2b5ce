package middleware

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/pkg/auth"
)

// RoleReader resolves the current role for a user id. The role is re-read on
// every guarded request instead of trusted from the token, so demotions take
// effect immediately.
type RoleReader interface {
	GetRole(userID uint) (user.Role, error)
}

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// OptionalAuthMiddleware provides optional authentication
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RequireRoles gates a route group on the caller holding one of the allowed
// roles. With no roles listed the route is public and no account lookup
// happens at all. Unauthenticated callers get a login redirect target with
// the original path as callback; authenticated callers with the wrong role
// get the fallback path. A failed role read rejects the request rather than
// letting a stale token role through.
func RequireRoles(cfg *config.Config, roles RoleReader, allowed ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Authentication required",
				"login_url": fmt.Sprintf("%s?callbackUrl=%s", cfg.Security.LoginPath, url.QueryEscape(c.Request.URL.Path)),
			})
			c.Abort()
			return
		}

		role, err := roles.GetRole(userID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Unable to verify account role",
			})
			c.Abort()
			return
		}

		for _, want := range allowed {
			if role == want {
				c.Set("user_role", string(role))
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":    "Insufficient role for this resource",
			"redirect": cfg.Security.FallbackPath,
		})
		c.Abort()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmailFromContext extracts user email from gin context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get("user_email")
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetUserRoleFromContext extracts the resolved role from gin context
func GetUserRoleFromContext(c *gin.Context) (user.Role, bool) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", false
	}
	role := user.Role(value.(string))
	if !role.IsValid() {
		return "", false
	}
	return role, true
}
