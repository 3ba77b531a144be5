package auth

import (
	"citricloud/backend/internal"
	"citricloud/backend/internal/store"
	"citricloud/backend/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data := bindCredentials(c)
	email := validators.NormalizeEmail(data.Email)

	user, err := d.Users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message":   "Invalid email or password.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := d.Argon.VerifyPassword(data.Password, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":   "Invalid email or password.",
			"requestID": requestID,
		})
		return
	}

	respondWithToken(c, d, user)
}
