package file

import (
	"citricloud/backend/internal"
	"citricloud/backend/internal/service"
	"citricloud/backend/pkg/middleware"
	"citricloud/backend/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) || strings.Contains(err.Error(), "http: request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"message":   "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "No file provided",
			"requestID": requestID,
		})

		zap.L().Debug("No file in upload request", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	name, err := validators.FileValidator(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	upload, err := d.Relay.Relay(c.Request.Context(), f, name)
	if err != nil {
		var te *service.TransferError
		if errors.As(err, &te) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message":   "Upload failed",
				"error":     te.Error(),
				"requestID": requestID,
			})

			zap.L().Error("Failed to relay upload",
				zap.Error(err),
				zap.String("stage", string(te.Stage)),
				zap.String("requestID", requestID),
			)
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to relay upload", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	zap.L().Info("File uploaded",
		zap.String("file", upload.FileName),
		zap.Int64("size", upload.Size),
		zap.String("userID", c.GetString("userID")),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message":           "File uploaded successfully",
		"filename":          upload.FileName,
		"path":              upload.Path,
		"size":              upload.Size,
		"original_filename": upload.OriginalName,
		"content_type":      upload.ContentType,
	})
}
