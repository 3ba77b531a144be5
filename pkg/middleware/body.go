package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter rejects bodies bigger than maxBytes. Handlers reading the body
// past the limit get an *http.MaxBytesError and should use IsBodyTooLarge.
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"message":   "Request body size exceeds limit",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
