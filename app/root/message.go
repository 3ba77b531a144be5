package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message reports that the API is up and which environment it runs in
func Message(c *gin.Context, environment string) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Citricloud backend is online.",
		"environment": environment,
	})
}
