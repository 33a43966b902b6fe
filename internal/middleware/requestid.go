package middleware

import (
	"regexp"

	"wabalerts/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Caller-supplied IDs must be short opaque tokens.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags every request with an ID, reusing the caller's X-Request-ID
// when it is well formed. Event sources can pass their own ID to correlate a
// dispatch with the shop-side hook that raised it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.New().String()
		}
		c.Set(common.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
