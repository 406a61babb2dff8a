package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
	availabilityService "github.com/reservly/booking-api/internal/service/availability"
	bookingService "github.com/reservly/booking-api/internal/service/booking"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/httputil"
	"github.com/reservly/booking-api/pkg/validator"
)

type Handler struct {
	service      *bookingService.Service
	availability *availabilityService.Service
	validate     *validator.Validator
}

func NewHandler(service *bookingService.Service, availability *availabilityService.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, availability: availability, validate: validate}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/no-show", h.MarkNoShow)
	}

	r.GET("/clinics/:id/availability", h.CheckAvailability)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, booking)
}

// scopedBooking resolves the :id path param and enforces the optional
// clinic_id query scope. A booking belonging to another clinic reads as not
// found, so a scoped caller cannot confirm ids across tenants.
func (h *Handler) scopedBooking(c *gin.Context) (*model.Booking, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid booking id"))
		return nil, false
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, false
	}

	if raw := c.Query("clinic_id"); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid clinic_id"))
			return nil, false
		}
		if booking.ClinicID != clinicID {
			httputil.RespondWithError(c, errors.NotFound("booking", nil))
			return nil, false
		}
	}
	return booking, true
}

func (h *Handler) GetBooking(c *gin.Context) {
	booking, ok := h.scopedBooking(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

func (h *Handler) ListBookings(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bookings)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	existing, ok := h.scopedBooking(c)
	if !ok {
		return
	}

	var req model.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	booking, err := h.service.UpdateBooking(c.Request.Context(), existing.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	existing, ok := h.scopedBooking(c)
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(c.Request.Context(), existing.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	existing, ok := h.scopedBooking(c)
	if !ok {
		return
	}

	booking, err := h.service.MarkNoShow(c.Request.Context(), existing.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, booking)
}

// CheckAvailability answers "who can take this window". With staff_id it
// reports a single yes/no; without, it lists available staff in roster order.
func (h *Handler) CheckAvailability(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("start must be RFC3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("end must be RFC3339"))
		return
	}

	if staffParam := c.Query("staff_id"); staffParam != "" {
		staffID, err := uuid.Parse(staffParam)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid staff id"))
			return
		}
		available, err := h.availability.CheckStaffAvailability(c.Request.Context(), clinicID, staffID, start, end)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, gin.H{"available": available})
		return
	}

	staffIDs, err := h.availability.FindAvailableStaff(c.Request.Context(), clinicID, start, end)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"staff_ids": staffIDs})
}

func parseFilters(c *gin.Context) (*model.BookingFilters, error) {
	clinicID, err := uuid.Parse(c.Query("clinic_id"))
	if err != nil {
		return nil, errors.Validation("clinic_id is required")
	}

	filters := &model.BookingFilters{
		ClinicID: clinicID,
		Status:   model.BookingStatus(c.Query("status")),
	}

	if v := c.Query("staff_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.Validation("invalid staff_id")
		}
		filters.StaffID = id
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.Validation("invalid user_id")
		}
		filters.UserID = id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.Validation("from must be RFC3339")
		}
		filters.StartDate = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.Validation("to must be RFC3339")
		}
		filters.EndDate = t
	}

	return filters, nil
}
