package booking

import (
	"errors"
	"net/http"
	"strconv"

	"inkbook/internal/domain"
	"inkbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterClientRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.create)
	rg.GET("/bookings/:id", h.getByID)
	rg.GET("/bookings", h.listMine)
	rg.POST("/bookings/:id/confirm", h.confirm)
	rg.POST("/bookings/:id/cancel", h.cancel)
	rg.POST("/bookings/:id/reschedule", h.reschedule)
}

func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/complete", h.complete)
	rg.POST("/bookings/:id/no-show", h.markNoShow)
	rg.POST("/bookings/:id/settle-refund", h.settleRefund)
	rg.GET("/clients/:id/no-shows", h.noShowHistory)
	rg.GET("/studios/:id/bookings", h.listForStudio)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.ClientID = actorID(c)

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to create booking")
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		return
	}
	if actorRole(c) == domain.RoleClient && b.ClientID != actorID(c) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) listMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.service.ListMyBookings(c.Request.Context(), actorID(c), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) listForStudio(c *gin.Context) {
	studioID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid studio ID")
		return
	}
	limit, offset := pagination(c)
	list, err := h.service.ListStudioBookings(c.Request.Context(), studioID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bookings")
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) confirm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	if !h.ownsBooking(c, id) {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to confirm booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) cancel(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), id, actorID(c), actorRole(c), req)
	if err != nil {
		h.writeError(c, err, "Failed to cancel booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) complete(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Complete(c.Request.Context(), id, actorRole(c))
	if err != nil {
		h.writeError(c, err, "Failed to complete booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) markNoShow(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to mark no-show")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) settleRefund(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.SettleRefund(c.Request.Context(), id, actorID(c))
	if err != nil {
		h.writeError(c, err, "Failed to settle refund")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) reschedule(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	if !h.ownsBooking(c, id) {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	b, err := h.service.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err, "Failed to reschedule booking")
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) noShowHistory(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
		return
	}
	hist, err := h.service.NoShowHistory(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load no-show history")
		return
	}
	response.Success(c, http.StatusOK, hist)
}

// ownsBooking rejects a client acting on somebody else's booking.
// Staff pass through; their routes are role-gated.
func (h *Handler) ownsBooking(c *gin.Context, bookingID int64) bool {
	if actorRole(c) != domain.RoleClient {
		return true
	}
	b, err := h.service.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		return false
	}
	if b.ClientID != actorID(c) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your booking")
		return false
	}
	return true
}

func (h *Handler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Booking status does not allow this transition")
	case errors.Is(err, ErrOutsideHours):
		response.Error(c, http.StatusConflict, "OUTSIDE_HOURS", "Requested window is outside working hours")
	case errors.Is(err, ErrTimeOff):
		response.Error(c, http.StatusConflict, "TIME_OFF", "Artist is on time off for the requested window")
	case errors.Is(err, ErrAlreadyBooked):
		response.Error(c, http.StatusConflict, "ALREADY_BOOKED", "Requested window is already booked")
	case errors.Is(err, ErrSlotNoLongerAvailable):
		response.Error(c, http.StatusConflict, "SLOT_TAKEN", "Slot was taken while confirming; pick another time")
	case errors.Is(err, ErrPaymentFailed):
		response.Error(c, http.StatusBadGateway, "PAYMENT_FAILED", "Deposit charge failed")
	case errors.Is(err, ErrInvalidRefundAmount):
		response.Error(c, http.StatusBadRequest, "INVALID_REFUND", "Refund override must be between 0 and the deposit")
	case errors.Is(err, ErrNoRefundDue):
		response.Error(c, http.StatusConflict, "NO_REFUND_DUE", "Booking has no unsettled refund")
	case errors.Is(err, ErrNotElapsed):
		response.Error(c, http.StatusConflict, "NOT_ELAPSED", "Appointment time has not elapsed")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, offset = 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func actorID(c *gin.Context) int64 {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func actorRole(c *gin.Context) domain.Role {
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(string); ok {
			return domain.Role(r)
		}
	}
	return ""
}
