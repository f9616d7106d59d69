package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserRateLimit limits an action per user (not per IP), e.g. gifting light.
// Requires JWT middleware to run before this.
func UserRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	l := newLimiter("user_rl:"+scope, maxRequests, window)
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !l.allow(c, strconv.FormatInt(userID, 10), "user:"+scope) {
			return
		}
		c.Next()
	}
}
