package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
)

// Context keys set by RequireAuth
const (
	ContextUserKey   = "current_user"
	ContextClaimsKey = "token_claims"
)

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// RequireAuth validates the bearer token, rejects revoked tokens and
// loads the authenticated user into the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := services.GetTokenService().Parse(c.Request.Context(), tokenStr)
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, services.ErrTokenRevoked) {
				code = "TOKEN_REVOKED"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": "Invalid or expired token",
				},
			})
			return
		}

		// The role on the token may be stale after a role update, so the
		// user record is always reloaded.
		db := config.GetDB()
		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "Account no longer exists",
				},
			})
			return
		}

		c.Set(ContextUserKey, &user)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the Gin context
func CurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return user, nil
}

// TokenClaims extracts the validated token claims from the Gin context
func TokenClaims(c *gin.Context) (*services.Claims, error) {
	value, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	claims, ok := value.(*services.Claims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return claims, nil
}
