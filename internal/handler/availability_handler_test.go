package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/application"
	"github.com/rentloop/service-booking/internal/auth"
	"github.com/rentloop/service-booking/internal/domain"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"github.com/rentloop/service-booking/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Stubs ---

type stubRentals struct {
	totals map[uuid.UUID]int
}

func (s *stubRentals) GetTotalQuantity(_ context.Context, rentalID uuid.UUID) (int, error) {
	total, ok := s.totals[rentalID]
	if !ok {
		return 0, domain.NewNotFoundError("Rental", rentalID.String())
	}
	return total, nil
}

func (s *stubRentals) LockForUpdate(_ context.Context, _ uuid.UUID) error { return nil }

type stubBookings struct {
	booked map[uuid.UUID]int
}

func (s *stubBookings) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return nil, domain.NewNotFoundError("Booking", id.String())
}

func (s *stubBookings) Create(_ context.Context, _ *bookingDomain.Booking) error { return nil }

func (s *stubBookings) UpdateStatus(_ context.Context, _ uuid.UUID, _ bookingDomain.BookingStatus) error {
	return nil
}

func (s *stubBookings) ListByQuery(_ context.Context, _ bookingDomain.BookingQuery) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (s *stubBookings) ListByTransactionID(_ context.Context, _ uuid.UUID) ([]*bookingDomain.Booking, error) {
	return nil, nil
}

func (s *stubBookings) ListBookedQuantities(_ context.Context, rentalID uuid.UUID, _ *uuid.UUID, startDate, endDate time.Time) ([]bookingDomain.DayQuantity, error) {
	var quantities []bookingDomain.DayQuantity
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		quantities = append(quantities, bookingDomain.DayQuantity{Date: d, Quantity: s.booked[rentalID]})
	}
	return quantities, nil
}

func (s *stubBookings) CountByStatus(_ context.Context) (map[string]int64, error) {
	return nil, nil
}

type stubHolds struct{}

func (stubHolds) ListOverlapping(_ context.Context, _ bookingDomain.HoldQuery) ([]bookingDomain.BookingHold, error) {
	return nil, nil
}

// --- Fixture ---

type routerFixture struct {
	router  *gin.Engine
	token   string
	rentals *stubRentals
	booked  *stubBookings
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rentals := &stubRentals{totals: make(map[uuid.UUID]int)}
	booked := &stubBookings{booked: make(map[uuid.UUID]int)}
	service := application.NewAvailabilityService(rentals, booked, stubHolds{}, zap.NewNop())

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateToken(uuid.New(), "employee@example.com")
	require.NoError(t, err)

	router := gin.New()
	handler.NewAvailabilityHandler(service).RegisterRoutes(&router.RouterGroup, jwtManager)

	return &routerFixture{router: router, token: token, rentals: rentals, booked: booked}
}

func (f *routerFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeAvailability(t *testing.T, body []byte) []bookingDomain.Availability {
	t.Helper()
	var payload struct {
		Data []bookingDomain.Availability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Data
}

// --- Tests ---

func TestGetAvailabilityEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	rentalID := uuid.New()
	f.rentals.totals[rentalID] = 4
	f.booked.booked[rentalID] = 1

	rec := f.get(t, fmt.Sprintf("/api/v1/availability?rental_id=%s&start_date=2026-06-01&end_date=2026-06-03", rentalID))

	require.Equal(t, http.StatusOK, rec.Code)
	availability := decodeAvailability(t, rec.Body.Bytes())
	require.Len(t, availability, 3)
	for _, a := range availability {
		assert.Equal(t, 3, a.AvailableQuantity)
	}
}

func TestGetAvailabilitiesEndpoint(t *testing.T) {
	f := newRouterFixture(t)
	rentalA := uuid.New()
	rentalB := uuid.New()
	f.rentals.totals[rentalA] = 2
	f.rentals.totals[rentalB] = 6

	rec := f.get(t, fmt.Sprintf("/api/v1/availabilities?rental_ids=%s,%s&start_date=2026-06-01&end_date=2026-06-02", rentalA, rentalB))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data map[uuid.UUID][]bookingDomain.Availability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 2)
	assert.Len(t, payload.Data[rentalA], 2)
	assert.Len(t, payload.Data[rentalB], 2)
}

func TestCheckAvailabilityEndpointSufficient(t *testing.T) {
	f := newRouterFixture(t)
	rentalID := uuid.New()
	f.rentals.totals[rentalID] = 5
	f.booked.booked[rentalID] = 2

	rec := f.get(t, fmt.Sprintf("/api/v1/availability/check/3?rental_id=%s&start_date=2026-06-01&end_date=2026-06-04", rentalID))

	require.Equal(t, http.StatusOK, rec.Code)
	availability := decodeAvailability(t, rec.Body.Bytes())
	require.Len(t, availability, 4)
	for _, a := range availability {
		assert.Equal(t, 3, a.AvailableQuantity)
	}
}

func TestCheckAvailabilityEndpointInsufficient(t *testing.T) {
	f := newRouterFixture(t)
	rentalID := uuid.New()
	f.rentals.totals[rentalID] = 5
	f.booked.booked[rentalID] = 3

	rec := f.get(t, fmt.Sprintf("/api/v1/availability/check/3?rental_id=%s&start_date=2026-06-01&end_date=2026-06-04", rentalID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityEndpointInvalidQuantity(t *testing.T) {
	f := newRouterFixture(t)
	rentalID := uuid.New()
	f.rentals.totals[rentalID] = 5

	for _, quantity := range []string{"0", "-1", "abc"} {
		rec := f.get(t, fmt.Sprintf("/api/v1/availability/check/%s?rental_id=%s&start_date=2026-06-01&end_date=2026-06-02", quantity, rentalID))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity %q must be rejected", quantity)
	}
}

func TestAvailabilityEndpointsRequireAuth(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/check/1?rental_id="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
