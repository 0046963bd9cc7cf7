package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /api/types
func (h *API) ListTypes(c *gin.Context) {
	types, err := h.Catalog.ListTypes(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// GET /api/types/:id
func (h *API) GetType(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	t, err := h.Catalog.GetType(c.Request.Context(), typeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /api/types/:id/tariffs
// An empty list means the type is not bookable yet.
func (h *API) ListTariffs(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	tariffs, err := h.Catalog.ListTariffs(c.Request.Context(), typeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariffs)
}

// GET /api/types/:id/staff
func (h *API) ListStaff(c *gin.Context) {
	typeID, ok := h.typeParam(c)
	if !ok {
		return
	}
	staff, err := h.Catalog.ListQualifiedStaff(c.Request.Context(), typeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *API) typeParam(c *gin.Context) (int64, bool) {
	typeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type id"})
		return 0, false
	}
	return typeID, true
}
