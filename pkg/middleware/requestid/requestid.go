// Package requestid tags every request with an id that flows through
// logs and error envelopes.
package requestid

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the inbound and outbound request id header.
const Header = "X-Request-ID"

const contextKey = "requestID"

// maxInboundLen caps ids supplied by clients; longer values are
// replaced rather than truncated.
const maxInboundLen = 64

// Middleware accepts a caller-supplied id when it looks sane, otherwise
// mints a UUID, and echoes the result back on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !acceptable(id) {
			id = newID()
		}
		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the request id for the current request, or "" outside
// the middleware.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxInboundLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func newID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return id.String()
}
