package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentloop/service-booking/internal/application"
	"github.com/rentloop/service-booking/internal/auth"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
)

// AvailabilityHandler handles HTTP requests for availability queries.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := AuthMiddleware(jwtManager)

	api := r.Group("/api/v1")
	api.Use(authMW)
	{
		api.GET("/availability", h.GetAvailability)
		api.GET("/availabilities", h.GetAvailabilities)
		api.GET("/availability/check/:quantity", h.CheckAvailability)
	}
}

// GetAvailability handles GET /api/v1/availability?rental_id=...
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	query, err := parseAvailabilityQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.GetAvailability(c.Request.Context(), *query)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// GetAvailabilities handles GET /api/v1/availabilities?rental_ids=a,b.
func (h *AvailabilityHandler) GetAvailabilities(c *gin.Context) {
	raw := c.Query("rental_ids")
	if raw == "" {
		BadRequest(c, "rental_ids is required")
		return
	}

	var rentalIDs []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			BadRequest(c, "invalid rental ID: "+part)
			return
		}
		rentalIDs = append(rentalIDs, id)
	}

	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	query := application.AvailabilitiesQuery{
		RentalIDs: rentalIDs,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if status, ok, err := parseHoldStatus(c); err != nil {
		BadRequest(c, err.Error())
		return
	} else if ok {
		query.HoldStatus = &status
	}

	result, err := h.service.GetAvailabilities(c.Request.Context(), query)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// CheckAvailability handles GET /api/v1/availability/check/:quantity. It
// answers the same query as GetAvailability but fails with 400 when any day
// in the range has less than the requested quantity available.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	quantity, err := strconv.Atoi(c.Param("quantity"))
	if err != nil || quantity <= 0 {
		BadRequest(c, "invalid quantity")
		return
	}

	query, err := parseAvailabilityQuery(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), quantity, *query)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}

// parseAvailabilityQuery extracts a single-rental availability query from
// query parameters.
func parseAvailabilityQuery(c *gin.Context) (*application.AvailabilityQuery, error) {
	rentalID, err := uuid.Parse(c.Query("rental_id"))
	if err != nil {
		return nil, err
	}

	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		return nil, err
	}

	query := application.AvailabilityQuery{
		RentalID:  rentalID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if status, ok, err := parseHoldStatus(c); err != nil {
		return nil, err
	} else if ok {
		query.HoldStatus = &status
	}
	if raw := c.Query("exclude_transaction_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		query.ExcludeTransactionID = &id
	}

	return &query, nil
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDate, endDate, nil
}

func parseHoldStatus(c *gin.Context) (bookingDomain.HoldStatus, bool, error) {
	raw := c.Query("hold_status")
	if raw == "" {
		return "", false, nil
	}
	status, err := bookingDomain.ParseHoldStatus(raw)
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}
