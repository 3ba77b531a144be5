// Package auth contains the account endpoints
package auth

import (
	"citricloud/backend/internal"
	"citricloud/backend/internal/model"
	"citricloud/backend/pkg/security"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialsBody struct {
	Email    string
	Password string
}

// bindCredentials never fails. A body that isn't a JSON object is treated
// like an empty one so validation decides what to answer. Fields that aren't
// strings are converted to their text form, a missing or null one is "".
func bindCredentials(c *gin.Context) credentialsBody {
	var raw map[string]any

	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	if err := dec.Decode(&raw); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		return credentialsBody{}
	}

	return credentialsBody{
		Email:    fieldString(raw["email"]),
		Password: fieldString(raw["password"]),
	}
}

func fieldString(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// respondWithToken issues a token for u and writes the login/registration response
func respondWithToken(c *gin.Context, d *internal.Deps, u *model.User) {
	requestID := c.GetString("requestID")
	identity := security.Identity{ID: u.ID, Email: u.Email}

	token, err := d.Tokens.Issue(identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate JWT auth token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         identity,
	})
}
