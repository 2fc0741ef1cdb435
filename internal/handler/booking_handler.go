package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/application"
	"github.com/rentloop/service-booking/internal/auth"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
)

// BookingHandler handles HTTP requests for booking lifecycle operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.RequestBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/stats", h.GetBookingStats)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", h.AcceptBooking)
		bookings.POST("/:id/decline", h.DeclineBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/complete", h.CompleteBooking)
	}
}

// RequestBooking handles POST /api/v1/bookings.
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var input application.RequestBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestBooking(c.Request.Context(), input)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	input, err := parseListInput(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), *input)
	if err != nil {
		Error(c, err)
		return
	}

	Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBookingStats handles GET /api/v1/bookings/stats.
func (h *BookingHandler) GetBookingStats(c *gin.Context) {
	result, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking ID")
		return
	}

	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), session, bookingID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// AcceptBooking handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

// DeclineBooking handles POST /api/v1/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	h.transition(c, h.service.Decline)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// CompleteBooking handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

// transition runs one lifecycle operation against the booking in the path.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, session auth.Session, bookingID uuid.UUID) (*application.BookingDTO, error)) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid booking ID")
		return
	}

	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := fn(c.Request.Context(), session, bookingID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// parseListInput extracts list filters from query parameters.
func parseListInput(c *gin.Context) (*application.ListBookingsInput, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	input := application.ListBookingsInput{
		Page:              page,
		Limit:             limit,
		CheckAvailability: c.Query("check_availability") == "true",
	}

	if raw := c.Query("transaction_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			input.TransactionIDs = append(input.TransactionIDs, id)
		}
	}
	if raw := c.Query("rental_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		input.RentalID = &id
	}
	if raw := c.Query("vendor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		input.VendorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, err := bookingDomain.ParseBookingStatus(raw)
		if err != nil {
			return nil, err
		}
		input.Status = &status
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
		input.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
		input.EndDate = &t
	}

	return &input, nil
}
