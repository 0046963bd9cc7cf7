package catalog

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"studio-booking-service/internal/apperr"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestGetTypeMapsMissingRowToNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM appointment_types").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "default_duration_minutes"}))

	_, err := store.GetType(context.Background(), 42)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetTypeReturnsRow(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM appointment_types").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "default_duration_minutes"}).
			AddRow(int64(1), "Deep Tissue Massage", "60 minute session", 60))

	typ, err := store.GetType(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Deep Tissue Massage", typ.Name)
	require.Equal(t, 60, typ.DefaultDuration)
}

func TestListTariffsEmptyIsNotAnError(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM appointment_tariffs").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "appointment_type_id", "name", "sessions", "duration_minutes", "price_cents"}))

	tariffs, err := store.ListTariffs(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, tariffs)
}

func TestGetTariffNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM appointment_tariffs").
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "appointment_type_id", "name", "sessions", "duration_minutes", "price_cents"}))

	_, err := store.GetTariff(context.Background(), 9)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListQualifiedStaff(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM staff_appointment_type").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "role"}).
			AddRow("staff-1", "Ada Moreno", "staff").
			AddRow("staff-2", "Ben Okafor", "staff"))

	staff, err := store.ListQualifiedStaff(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	require.Equal(t, "Ada Moreno", staff[0].FullName)
}

func TestListQualifiedStaffEmpty(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM staff_appointment_type").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "role"}))

	staff, err := store.ListQualifiedStaff(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, staff)
}
