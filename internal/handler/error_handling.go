package handler

import (
	"errors"
	"net/http"

	"finance-tracker/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Error: "Unauthorized"}
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "Notification not found"}
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	default:
		logger.Error("Unhandled internal error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Internal server error"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

// getUserIDFromContext достает UserID, положенный auth middleware.
// При отсутствии сразу отвечает 401.
func getUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := models.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
