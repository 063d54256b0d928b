package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/pkg/jwt"
)

// AuthMiddleware validates the access token and puts
// userID (uuid.UUID) and role (string) into the gin context.
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "missing authorization header"}})
			c.Abort()
			return
		}

		// 2. Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "invalid authorization header format"}})
			c.Abort()
			return
		}

		// 3. Verify and parse claims
		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "invalid token"}})
			c.Abort()
			return
		}

		// 4. Parse the user ID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(401, gin.H{"success": false, "error": gin.H{"code": "UNAUTHORIZED", "message": "invalid user ID in token"}})
			c.Abort()
			return
		}

		// 5. Expose identity to handlers
		c.Set("userID", userID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
