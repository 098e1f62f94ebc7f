package commission

import (
	"errors"
	"net/http"
	"strconv"

	"inkbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterOwnerRoutes(rg *gin.RouterGroup) {
	rg.GET("/studios/:id/commission-rules", h.listRules)
	rg.POST("/studios/:id/commission-rules", h.createRule)
	rg.DELETE("/studios/:id/commission-rules/:ruleID", h.deactivateRule)
	rg.GET("/studios/:id/commissions", h.listEarned)
	rg.GET("/bookings/:id/commission", h.earnedForBooking)
}

func (h *Handler) listRules(c *gin.Context) {
	studioID, ok := h.studioID(c)
	if !ok {
		return
	}
	rules, err := h.service.ListRules(c.Request.Context(), studioID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rules")
		return
	}
	response.Success(c, http.StatusOK, rules)
}

func (h *Handler) createRule(c *gin.Context) {
	studioID, ok := h.studioID(c)
	if !ok {
		return
	}
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rule, err := h.service.CreateRule(c.Request.Context(), studioID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid commission rule")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create rule")
		return
	}
	response.Success(c, http.StatusCreated, rule)
}

func (h *Handler) deactivateRule(c *gin.Context) {
	studioID, ok := h.studioID(c)
	if !ok {
		return
	}
	ruleID, err := strconv.ParseInt(c.Param("ruleID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rule ID")
		return
	}
	if err := h.service.DeactivateRule(c.Request.Context(), ruleID, studioID); err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Rule not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

func (h *Handler) listEarned(c *gin.Context) {
	studioID, ok := h.studioID(c)
	if !ok {
		return
	}
	limit, offset := 50, 0
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
	earned, err := h.service.ListEarned(c.Request.Context(), studioID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list commissions")
		return
	}
	response.Success(c, http.StatusOK, earned)
}

func (h *Handler) earnedForBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}
	e, err := h.service.EarnedForBooking(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No commission for this booking")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load commission")
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) studioID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid studio ID")
		return 0, false
	}
	return id, true
}
