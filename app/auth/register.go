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

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	data := bindCredentials(c)
	email := validators.NormalizeEmail(data.Email)

	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	// Checked up front for a clean answer, the unique index still guards
	// against two registrations racing each other
	_, err := d.Users.FindByEmail(c.Request.Context(), email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"message":   "Account already exists.",
			"requestID": requestID,
		})
		return
	}

	if !errors.Is(err, store.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Users.Create(c.Request.Context(), email, data.Password)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"message":   "Account already exists.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	zap.L().Info("User registered", zap.Int64("userID", user.ID), zap.String("requestID", requestID))
	respondWithToken(c, d, user)
}
