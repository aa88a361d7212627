package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"input-portal/internal/common"
	"input-portal/internal/credentials"
	"input-portal/internal/middleware"
)

// render writes data as JSON, adding the request id so callers can quote it.
func render(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id := middleware.GetRequestID(c); id != "" {
		data["request_id"] = id
	}
	c.JSON(status, data)
}

// renderError maps an error category to a status. Internal failures are
// logged and answered with a generic message.
func (h *Handler) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)))
		_ = c.Error(err)
		render(c, status, gin.H{"error": "internal error"})
		return
	}
	render(c, status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, credentials.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, credentials.ErrPasswordUnset):
		return http.StatusConflict
	case errors.Is(err, errForeignCompany):
		return http.StatusForbidden
	case errors.Is(err, common.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
