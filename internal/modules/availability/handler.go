package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"inkbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/artists/:id/slots", h.listSlots)
}

func (h *Handler) RegisterArtistRoutes(rg *gin.RouterGroup) {
	rg.GET("/artists/:id/availability-rules", h.listRules)
	rg.POST("/artists/:id/availability-rules", h.createRule)
	rg.DELETE("/artists/:id/availability-rules/:ruleID", h.deactivateRule)
	rg.POST("/artists/:id/time-off", h.createTimeOff)
	rg.DELETE("/artists/:id/time-off/:timeOffID", h.deleteTimeOff)
}

func (h *Handler) listSlots(c *gin.Context) {
	artistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid artist ID")
		return
	}
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be YYYY-MM-DD")
		return
	}
	minMinutes := 30
	if v := c.Query("min_minutes"); v != "" {
		minMinutes, err = strconv.Atoi(v)
		if err != nil || minMinutes <= 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "min_minutes must be a positive integer")
			return
		}
	}

	slots, err := h.service.ComputeFreeSlots(c.Request.Context(), artistID, from, to, time.Duration(minMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute slots")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"artist_id": artistID, "slots": slots})
}

func (h *Handler) listRules(c *gin.Context) {
	artistID, ok := h.artistID(c)
	if !ok {
		return
	}
	rules, err := h.service.ListRules(c.Request.Context(), artistID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rules")
		return
	}
	response.Success(c, http.StatusOK, rules)
}

func (h *Handler) createRule(c *gin.Context) {
	artistID, ok := h.artistID(c)
	if !ok {
		return
	}
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	rule, err := h.service.CreateRule(c.Request.Context(), artistID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid rule window")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create rule")
		return
	}
	response.Success(c, http.StatusCreated, rule)
}

func (h *Handler) deactivateRule(c *gin.Context) {
	artistID, ok := h.artistID(c)
	if !ok {
		return
	}
	ruleID, err := strconv.ParseInt(c.Param("ruleID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rule ID")
		return
	}
	if err := h.service.DeactivateRule(c.Request.Context(), ruleID, artistID); err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Rule not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

func (h *Handler) createTimeOff(c *gin.Context) {
	artistID, ok := h.artistID(c)
	if !ok {
		return
	}
	var req CreateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	t, err := h.service.CreateTimeOff(c.Request.Context(), artistID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid time-off range")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create time off")
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) deleteTimeOff(c *gin.Context) {
	artistID, ok := h.artistID(c)
	if !ok {
		return
	}
	timeOffID, err := strconv.ParseInt(c.Param("timeOffID"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid time-off ID")
		return
	}
	if err := h.service.DeleteTimeOff(c.Request.Context(), timeOffID, artistID); err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Time off not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) artistID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid artist ID")
		return 0, false
	}
	return id, true
}
