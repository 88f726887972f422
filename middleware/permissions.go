package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washbook/washbook-api/authz"
)

// RequirePermission gates a route on a permission string from the authz
// table. Must run after RequireAuth. These checks mirror what the SPA
// uses to disable controls; the server-side check is the boundary.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			return
		}

		if !authz.HasPermission(user.Role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}
