package clinic

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
	clinicService "github.com/reservly/booking-api/internal/service/clinic"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/httputil"
	"github.com/reservly/booking-api/pkg/validator"
)

type Handler struct {
	service  *clinicService.Service
	validate *validator.Validator
}

func NewHandler(service *clinicService.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.PUT("/:id", h.UpdateClinic)

		clinics.POST("/:id/staff", h.CreateStaff)
		clinics.GET("/:id/staff", h.ListStaff)
		clinics.GET("/:id/staff/:staffId", h.GetStaff)
		clinics.PUT("/:id/staff/:staffId", h.UpdateStaff)
		clinics.DELETE("/:id/staff/:staffId", h.DeleteStaff)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, clinic)
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) ListClinics(c *gin.Context) {
	filters := &model.ClinicFilters{
		Status: model.ClinicStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	clinics, err := h.service.ListClinics(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinics)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	var req model.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) CreateStaff(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	staff, err := h.service.CreateStaff(c.Request.Context(), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, staff)
}

func (h *Handler) GetStaff(c *gin.Context) {
	clinicID, staffID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	staff, err := h.service.GetStaff(c.Request.Context(), clinicID, staffID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) ListStaff(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	staff, err := h.service.ListStaff(c.Request.Context(), clinicID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	clinicID, staffID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req model.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	staff, err := h.service.UpdateStaff(c.Request.Context(), clinicID, staffID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	clinicID, staffID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteStaff(c.Request.Context(), clinicID, staffID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) pathIDs(c *gin.Context) (clinicID, staffID uuid.UUID, ok bool) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return uuid.Nil, uuid.Nil, false
	}
	staffID, err = uuid.Parse(c.Param("staffId"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid staff id"))
		return uuid.Nil, uuid.Nil, false
	}
	return clinicID, staffID, true
}
