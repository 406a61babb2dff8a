package shift

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
	shiftService "github.com/reservly/booking-api/internal/service/shift"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/httputil"
	"github.com/reservly/booking-api/pkg/validator"
)

type Handler struct {
	service  *shiftService.Service
	validate *validator.Validator
}

func NewHandler(service *shiftService.Service, validate *validator.Validator) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics/:id")
	{
		clinics.GET("/shifts", h.ListShifts)
		clinics.DELETE("/shifts", h.DeleteShifts)
		clinics.GET("/shifts/draft", h.GetDayDraft)
		clinics.PUT("/shifts/draft", h.SaveDayDraft)

		clinics.POST("/shift-requests", h.CreateRequest)
		clinics.GET("/shift-requests", h.ListRequests)
		clinics.DELETE("/shift-requests", h.DeleteRequests)
	}

	requests := r.Group("/shift-requests")
	{
		requests.POST("/:id/approve", h.ApproveRequest)
		requests.POST("/:id/reject", h.RejectRequest)
		requests.POST("/bulk-approve", h.BulkApprove)
	}
}

func (h *Handler) ListShifts(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	shifts, err := h.service.ListShifts(c.Request.Context(), clinicID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shifts)
}

func (h *Handler) DeleteShifts(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	deleted, err := h.service.DeleteShiftsInRange(c.Request.Context(), clinicID, c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": deleted})
}

func (h *Handler) GetDayDraft(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	drafts, err := h.service.BuildDayDraft(c.Request.Context(), clinicID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, drafts)
}

func (h *Handler) SaveDayDraft(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	var req model.SaveShiftDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	shifts, err := h.service.SaveDayDraft(c.Request.Context(), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shifts)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	var req model.CreateShiftRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	request, err := h.service.CreateRequest(c.Request.Context(), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, request)
}

func (h *Handler) ListRequests(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), clinicID, model.ShiftRequestStatus(c.Query("status")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, requests)
}

func (h *Handler) DeleteRequests(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid clinic id"))
		return
	}

	deleted, err := h.service.DeleteRequestsInRange(c.Request.Context(), clinicID, c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": deleted})
}

func (h *Handler) ApproveRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request id"))
		return
	}

	if err := h.service.ApproveRequest(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": model.ShiftRequestStatusApproved})
}

func (h *Handler) RejectRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request id"))
		return
	}

	if err := h.service.RejectRequest(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": model.ShiftRequestStatusRejected})
}

func (h *Handler) BulkApprove(c *gin.Context) {
	var req model.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error()))
		return
	}

	if err := h.service.BulkApprove(c.Request.Context(), req.RequestIDs); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"approved": len(req.RequestIDs)})
}
