package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"studio-booking-service/internal/apperr"
	"studio-booking-service/internal/appointment"
	"studio-booking-service/internal/auth"
	"studio-booking-service/internal/booking"
	"studio-booking-service/internal/calendarsync"
	"studio-booking-service/internal/schedule"
)

type stubSlots struct {
	slots []schedule.SlotCandidate
	err   error
}

func (s *stubSlots) ComputeSlots(context.Context, int64, string, string, int, string) ([]schedule.SlotCandidate, error) {
	return s.slots, s.err
}

type stubBooker struct {
	appts []appointment.Appointment
	err   error
}

func (b *stubBooker) ReserveSessions(context.Context, auth.Identity, booking.ReserveRequest) ([]appointment.Appointment, error) {
	return b.appts, b.err
}

func (b *stubBooker) EditAppointment(context.Context, auth.Identity, string, booking.EditRequest) (*appointment.Appointment, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &b.appts[0], nil
}

func (b *stubBooker) CancelAppointment(context.Context, auth.Identity, string) (*appointment.Appointment, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &b.appts[0], nil
}

func (b *stubBooker) ListAppointments(context.Context, auth.Identity) ([]appointment.Appointment, error) {
	return b.appts, b.err
}

func newTestRouter(api *API) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.Attach(c, auth.Identity{UserID: "user-1", Role: "member"})
	})
	r.GET("/api/types/:id/slots", api.GetSlots)
	r.POST("/api/bookings", api.CreateBooking)
	r.PUT("/api/appointments/:id", api.EditAppointment)
	r.DELETE("/api/appointments/:id", api.CancelAppointment)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const reserveBody = `{
	"type_id": 1, "staff_id": "staff-1", "tariff_id": 10,
	"slots": [{"start_at": "2026-01-05T10:00:00Z", "end_at": "2026-01-05T11:00:00Z"}]
}`

func TestGetSlotsReturnsCandidates(t *testing.T) {
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	api := &API{
		Slots:  &stubSlots{slots: []schedule.SlotCandidate{{StartAt: start, EndAt: start.Add(time.Hour)}}},
		Logger: zerolog.Nop(),
	}
	w := do(newTestRouter(api), http.MethodGet, "/api/types/1/slots?date=2026-01-05&staff_id=staff-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "2026-01-05T10:00:00Z")
}

func TestGetSlotsEmptyDayIsOKWithEmptyList(t *testing.T) {
	api := &API{Slots: &stubSlots{}, Logger: zerolog.Nop()}
	w := do(newTestRouter(api), http.MethodGet, "/api/types/1/slots?date=2026-01-04&staff_id=staff-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestGetSlotsRequiresDateAndStaff(t *testing.T) {
	api := &API{Slots: &stubSlots{}, Logger: zerolog.Nop()}
	w := do(newTestRouter(api), http.MethodGet, "/api/types/1/slots?date=2026-01-05", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingCreated(t *testing.T) {
	api := &API{
		Booking: &stubBooker{appts: []appointment.Appointment{{ID: "appt-1", Status: appointment.StatusBooked}}},
		Logger:  zerolog.Nop(),
	}
	w := do(newTestRouter(api), http.MethodPost, "/api/bookings", reserveBody)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "appt-1")
}

func TestErrorTaxonomyMapsToStatuses(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperr.ErrInvalidInput, http.StatusBadRequest},
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrPermissionDenied, http.StatusForbidden},
		{apperr.ErrSlotTaken, http.StatusConflict},
		{apperr.ErrInvalidState, http.StatusConflict},
		{apperr.ErrLimitExceeded, http.StatusUnprocessableEntity},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		api := &API{Booking: &stubBooker{err: tc.err}, Logger: zerolog.Nop()}
		w := do(newTestRouter(api), http.MethodPost, "/api/bookings", reserveBody)
		require.Equal(t, tc.code, w.Code, "error %v", tc.err)
	}
}

func TestStorageFailureIsNotLeaked(t *testing.T) {
	api := &API{Booking: &stubBooker{err: errors.New("pq: ssl handshake")}, Logger: zerolog.Nop()}
	w := do(newTestRouter(api), http.MethodPost, "/api/bookings", reserveBody)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "ssl handshake")
	require.Contains(t, w.Body.String(), "retry")
}

func TestEditAppointmentForbiddenForForeignUser(t *testing.T) {
	api := &API{Booking: &stubBooker{err: apperr.ErrPermissionDenied}, Logger: zerolog.Nop()}
	body := `{"slot": {"start_at": "2026-01-06T14:00:00Z", "end_at": "2026-01-06T15:00:00Z"}}`
	w := do(newTestRouter(api), http.MethodPut, "/api/appointments/appt-1", body)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelUnknownAppointmentIs404(t *testing.T) {
	api := &API{Booking: &stubBooker{err: apperr.ErrNotFound}, Logger: zerolog.Nop()}
	w := do(newTestRouter(api), http.MethodDelete, "/api/appointments/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOAuthCallbackRejectsForgedState(t *testing.T) {
	oauth := calendarsync.NewOAuthConfig("client-id", "client-secret", "http://localhost/oauth2callback")
	api := &API{OAuth: oauth, Logger: zerolog.Nop()}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/oauth2callback", api.CalendarOAuthCallback)

	w := do(r, http.MethodGet, "/oauth2callback?code=abc&state=forged", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid state")
}

func TestOAuthCallbackRequiresCode(t *testing.T) {
	oauth := calendarsync.NewOAuthConfig("client-id", "client-secret", "http://localhost/oauth2callback")
	api := &API{OAuth: oauth, Logger: zerolog.Nop()}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/oauth2callback", api.CalendarOAuthCallback)

	w := do(r, http.MethodGet, "/oauth2callback?state="+oauth.StateToken(), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "code required")
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	api := &API{Booking: &stubBooker{}, Logger: zerolog.Nop()}
	w := do(newTestRouter(api), http.MethodPost, "/api/bookings", `{"type_id": 1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
