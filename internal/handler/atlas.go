package handler

import (
	"context"
	"net/http"

	"geoform/internal/atlas"
	"geoform/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AtlasHandler serves previews of the location atlas
type AtlasHandler struct {
	service AtlasService
}

// Service interface for dependency injection
type AtlasService interface {
	BuildAtlas(ctx context.Context) (*atlas.Atlas, atlas.Stats, error)
}

// NewAtlasHandler creates a new atlas handler
func NewAtlasHandler(svc AtlasService) *AtlasHandler {
	return &AtlasHandler{service: svc}
}

// Atlas handles GET /atlas requests. Repeated path parameters select a subtree,
// e.g. /atlas?path=USA&path=TX-Texas.
func (h *AtlasHandler) Atlas(c *gin.Context) {
	path := c.QueryArray("path")

	a, stats, err := h.service.BuildAtlas(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to build atlas")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var node any = a
	if len(path) > 0 {
		n, ok := a.Lookup(path...)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no location at the specified path"})
			return
		}
		node = n
	} else {
		path = []string{}
	}

	c.JSON(http.StatusOK, models.AtlasSummary{
		Accepted: stats.Accepted,
		Skipped:  stats.Skipped,
		Depth:    a.Depth(),
		Path:     path,
		Node:     node,
	})
}
