package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studio-booking-service/internal/auth"
	"studio-booking-service/internal/booking"
)

type slotSelectionReq struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

type reserveReq struct {
	TypeID   int64              `json:"type_id" binding:"required"`
	StaffID  string             `json:"staff_id" binding:"required"`
	TariffID int64              `json:"tariff_id" binding:"required"`
	Slots    []slotSelectionReq `json:"slots" binding:"required,min=1"`
}

// POST /api/bookings
func (h *API) CreateBooking(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	var req reserveReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots := make([]booking.SlotSelection, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, booking.SlotSelection{StartAt: s.StartAt, EndAt: s.EndAt})
	}
	appts, err := h.Booking.ReserveSessions(c.Request.Context(), ident, booking.ReserveRequest{
		TypeID:   req.TypeID,
		StaffID:  req.StaffID,
		TariffID: req.TariffID,
		Slots:    slots,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appts)
}

// GET /api/appointments
func (h *API) ListAppointments(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	appts, err := h.Booking.ListAppointments(c.Request.Context(), ident)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

type editReq struct {
	StaffID string           `json:"staff_id,omitempty"`
	Slot    slotSelectionReq `json:"slot" binding:"required"`
}

// PUT /api/appointments/:id
func (h *API) EditAppointment(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	var req editReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	appt, err := h.Booking.EditAppointment(c.Request.Context(), ident, c.Param("id"), booking.EditRequest{
		StaffID: req.StaffID,
		Slot:    booking.SlotSelection{StartAt: req.Slot.StartAt, EndAt: req.Slot.EndAt},
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// DELETE /api/appointments/:id
func (h *API) CancelAppointment(c *gin.Context) {
	ident, ok := h.identity(c)
	if !ok {
		return
	}
	appt, err := h.Booking.CancelAppointment(c.Request.Context(), ident, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// POST /api/appointments/:id/complete (staff)
func (h *API) CompleteAppointment(c *gin.Context) {
	appt, err := h.Completer.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *API) identity(c *gin.Context) (auth.Identity, bool) {
	ident, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return auth.Identity{}, false
	}
	return ident, true
}
