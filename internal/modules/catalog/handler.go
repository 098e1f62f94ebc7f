package catalog

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

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/studios", h.listStudios)
	rg.GET("/studios/:id", h.getStudio)
	rg.GET("/studios/:id/artists", h.listArtists)
	rg.GET("/artists/:id", h.getArtist)
}

func (h *Handler) RegisterOwnerRoutes(rg *gin.RouterGroup) {
	rg.POST("/studios", h.createStudio)
	rg.POST("/studios/:id/artists", h.addArtist)
}

func (h *Handler) listStudios(c *gin.Context) {
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
	studios, err := h.service.ListStudios(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list studios")
		return
	}
	response.Success(c, http.StatusOK, studios)
}

func (h *Handler) getStudio(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	studio, err := h.service.GetStudio(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Studio not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load studio")
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) createStudio(c *gin.Context) {
	var req CreateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	studio, err := h.service.CreateStudio(c.Request.Context(), c.GetInt64("userID"), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid studio data")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create studio")
		return
	}
	response.Success(c, http.StatusCreated, studio)
}

func (h *Handler) listArtists(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	artists, err := h.service.ListArtists(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list artists")
		return
	}
	response.Success(c, http.StatusOK, artists)
}

func (h *Handler) getArtist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	artist, err := h.service.GetArtist(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Artist not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load artist")
		return
	}
	response.Success(c, http.StatusOK, artist)
}

func (h *Handler) addArtist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateArtistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	artist, err := h.service.AddArtist(c.Request.Context(), id, c.GetInt64("userID"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Studio not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the studio owner may add artists")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add artist")
		}
		return
	}
	response.Success(c, http.StatusCreated, artist)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
