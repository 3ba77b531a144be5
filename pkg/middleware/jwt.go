package middleware

import (
	"citricloud/backend/internal/model"
	"citricloud/backend/internal/store"
	"citricloud/backend/pkg/security"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFinder is used to make sure the account behind a token still exists
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// NewJWTMiddleware checks the bearer token of a request and stores the
// security.Identity it carries as "identity"
func NewJWTMiddleware(tokens *security.TokenIssuer, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Missing Authorization header",
				"requestID": requestID,
			})
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   "Authorization header must be of the form 'Bearer <token>'",
				"requestID": requestID,
			})
			return
		}

		identity, err := tokens.Verify(strings.TrimSpace(tokenStr))
		if err != nil {
			msg := "Authorization token invalid"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Authorization token expired. Please log in again"
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":   msg,
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if _, err := users.FindByID(c.Request.Context(), identity.ID); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message":   "Account no longer exists",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message":   "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("identity", identity)
		c.Set("userID", strconv.FormatInt(identity.ID, 10))
		c.Next()
	}
}
