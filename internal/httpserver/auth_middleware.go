package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/pkg/util"
)

// AuthMiddleware resolves the bearer token to a user identity. Missing,
// malformed and expired tokens all produce the same 401: the caller
// only learns that it must re-authenticate.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		userID, email, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		// store identity in context so handlers can use it
		c.Set("user_id", userID)
		c.Set("email", email)

		c.Next()
	}
}
