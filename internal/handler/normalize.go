package handler

import (
	"net/http"

	"geoform/internal/models"

	"github.com/gin-gonic/gin"
)

// NormalizeHandler probes location name normalization
type NormalizeHandler struct {
	service NormalizeService
}

// Service interface for dependency injection
type NormalizeService interface {
	Normalize(raw string) (string, error)
	Country(raw string) (string, bool)
}

// NewNormalizeHandler creates a new normalize handler
func NewNormalizeHandler(svc NormalizeService) *NormalizeHandler {
	return &NormalizeHandler{service: svc}
}

// Normalize handles GET /normalize requests
func (h *NormalizeHandler) Normalize(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	normalized, err := h.service.Normalize(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := models.Normalized{Input: query, Normalized: normalized}
	if country, ok := h.service.Country(query); ok {
		res.Country = country
	}
	c.JSON(http.StatusOK, res)
}
