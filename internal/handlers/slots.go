package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /api/types/:id/slots?date=YYYY-MM-DD&staff_id=...&duration=...
func (h *API) GetSlots(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	date := c.Query("date")
	staffID := c.Query("staff_id")
	if date == "" || staffID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and staff_id required"})
		return
	}
	duration := 0
	if d := c.Query("duration"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
		duration = n
	}

	slots, err := h.Slots.ComputeSlots(c.Request.Context(), typeID, date, staffID, duration, "")
	if err != nil {
		h.writeError(c, err)
		return
	}
	if slots == nil {
		// No templates for that weekday is not an error.
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, slots)
}
