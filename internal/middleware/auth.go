package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat-service/internal/auth"
	"docuchat-service/internal/repositories"
)

// Context keys populated for authenticated requests.
const (
	UserIDKey  = "userID"
	IsAdminKey = "isAdmin"
)

// AuthMiddleware validates the Authorization header and loads the caller's
// identity. The admin capability is derived here, once per request, from
// the stored role and travels down through the context.
func AuthMiddleware(tokens *auth.TokenManager, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(IsAdminKey, user.IsAdmin())
		c.Next()
	}
}
