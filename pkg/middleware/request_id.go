// Package middleware contains any custom middleware used in the app
package middleware

import (
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDLength = 12
	maxRequestIDLen = 64
)

// NewRequestIDMiddleware returns a new middleware function that sets requestID for
// each incoming request. A sane X-Request-Id sent by a proxy is kept, otherwise a
// new one is generated. The ID is echoed back in the response headers.
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = gonanoid.Must(requestIDLength)
		}

		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
