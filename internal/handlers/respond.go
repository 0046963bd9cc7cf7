package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studio-booking-service/internal/apperr"
)

// writeError maps the failure taxonomy to HTTP statuses. Anything outside
// the taxonomy is a storage/transport failure and surfaces generically with
// retry guidance.
func (h *API) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrLimitExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary failure, please retry"})
	}
}
