package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared"
)

// LibrarianMiddleware checks that the caller has the librarian role.
// Must run after AuthMiddleware, which sets "role".
func LibrarianMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied: librarian role required",
			})
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok || role != shared.RoleLibrarian {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied: librarian role required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
