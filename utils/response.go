package utils

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendgraph/apperrors"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func InternalError(c *gin.Context, details string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong", "details": details})
}

// RespondError renders err according to its apperrors kind. Untyped errors
// become a 500 carrying the error text.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	appErr := apperrors.As(err)

	switch appErr.Kind {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindConflict:
		body := gin.H{"error": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		c.JSON(appErr.HTTPStatus(), body)
	case apperrors.KindAuthentication:
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": appErr.Message, "data": nil})
	default:
		details := appErr.Message
		if appErr.Err != nil {
			details = appErr.Err.Error()
		}
		if logger != nil {
			logger.Error("request failed",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("error", details),
			)
		}
		InternalError(c, details)
	}
}
