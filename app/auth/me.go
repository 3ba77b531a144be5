package auth

import (
	"citricloud/backend/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the identity of the token holder. The JWT middleware has to run first.
func Me(c *gin.Context) {
	identity := c.MustGet("identity").(security.Identity)

	c.JSON(http.StatusOK, gin.H{
		"user": identity,
	})
}
