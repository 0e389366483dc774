package handlers

import (
	"context"
	"net/http"

	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionAPI interface {
	Categories(ctx context.Context) ([]string, error)
	StudyMaterials(ctx context.Context, category string) ([]service.CategoryMaterials, error)
	Performance(ctx context.Context, learnerID string) ([]service.PerformanceEntry, error)
}

type QuestionHandler struct {
	Service QuestionAPI
}

func NewQuestionHandler(s QuestionAPI) *QuestionHandler {
	return &QuestionHandler{Service: s}
}

func (h *QuestionHandler) Categories(c *gin.Context) {
	categories, err := h.Service.Categories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *QuestionHandler) StudyMaterials(c *gin.Context) {
	if _, ok := learnerID(c); !ok {
		return
	}
	groups, err := h.Service.StudyMaterials(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, "Failed to load study materials", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": groups})
}

func (h *QuestionHandler) Performance(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}
	entries, err := h.Service.Performance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to load performance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"performance": entries, "count": len(entries)})
}
