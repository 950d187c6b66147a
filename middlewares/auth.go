package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventsapi/models"
)

const (
	HeaderAuthUser  = "cc-authentication-user"
	HeaderAuthToken = "cc-authentication-token"
)

// Authenticate checks the header pair against the stored session. The token
// is valid only while a session record exists with the exact same value, so
// a newer login silently revokes older tokens.
func Authenticate(sessions models.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(HeaderAuthUser)
		token := c.GetHeader(HeaderAuthToken)
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		sess, err := sessions.Get(username)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify credentials"})
			}
			return
		}
		if sess.Token != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
