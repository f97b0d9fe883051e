package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"SP-DOCS/internal/services"
)

// respondError maps the service error taxonomy to HTTP statuses. Unknown
// errors stay opaque 500s so internal detail never leaks to clients.
func respondError(c *gin.Context, err error) {
	var convErr *services.ConversionError
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPackInactive),
		errors.Is(err, services.ErrPackMismatch),
		errors.Is(err, services.ErrOverrideNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &convErr):
		status := http.StatusBadGateway
		if convErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": convErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
