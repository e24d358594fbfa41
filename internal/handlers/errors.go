package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/dto"
)

// respondError maps err onto the apperrors taxonomy. Server-side failures are
// logged with the cause and answered with the generic message; client errors
// echo the error text.
func respondError(c *gin.Context, logger *slog.Logger, err error, message string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, slog.String("error", err.Error()), slog.Int("status", status))
		if status == http.StatusServiceUnavailable {
			c.JSON(status, dto.ErrorResponse{Error: message + ": service unavailable"})
			return
		}
		c.JSON(status, dto.ErrorResponse{Error: message})
		return
	}
	logger.Warn(message, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
