package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studio-booking-service/internal/schedule"
)

type templateReq struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// POST /api/types/:id/templates (staff)
func (h *API) CreateTemplate(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	var req templateReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := schedule.TemplateSlot{
		AppointmentTypeID: typeID,
		DayOfWeek:         *req.DayOfWeek,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
	}
	if err := h.Templates.Create(c.Request.Context(), &t); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GET /api/types/:id/templates (staff)
func (h *API) ListTemplates(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	templates, err := h.Templates.ListForType(c.Request.Context(), typeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// PUT /api/templates/:id (staff)
func (h *API) UpdateTemplate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	var req templateReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := schedule.TemplateSlot{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := h.Templates.Update(c.Request.Context(), id, &t); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
