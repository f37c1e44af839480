package handler

import (
	"context"
	"net/http"

	"geoform/internal/form"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultContinueRef = "continue"

// QuestionsHandler previews the generated location questions
type QuestionsHandler struct {
	service QuestionService
}

// Service interface for dependency injection
type QuestionService interface {
	Preview(ctx context.Context, continueRef string) (form.Tree, error)
}

// NewQuestionsHandler creates a new questions handler
func NewQuestionsHandler(svc QuestionService) *QuestionsHandler {
	return &QuestionsHandler{service: svc}
}

// Questions handles GET /questions requests
func (h *QuestionsHandler) Questions(c *gin.Context) {
	continueRef := c.DefaultQuery("continue", defaultContinueRef)

	tree, err := h.service.Preview(c.Request.Context(), continueRef)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to preview questions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	fields := tree.Fields
	if fields == nil {
		fields = []form.Field{}
	}
	logic := tree.Logic
	if logic == nil {
		logic = []form.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{
		"root":   tree.RootRef,
		"fields": fields,
		"logic":  logic,
	})
}
