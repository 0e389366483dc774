package handlers

import (
	"context"
	"net/http"
	"strconv"

	"practice-service/internal/models"

	"github.com/gin-gonic/gin"
)

type ResultAPI interface {
	History(ctx context.Context, userID, testType string, limit int) ([]models.TestResult, error)
	Result(ctx context.Context, userID, resultID string) (*models.TestResult, error)
	Stats(ctx context.Context, userID string) (*models.TestStats, error)
}

type ResultHandler struct {
	Service ResultAPI
}

func NewResultHandler(s ResultAPI) *ResultHandler {
	return &ResultHandler{Service: s}
}

// History: GET /history?limit=&testType=
func (h *ResultHandler) History(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	results, err := h.Service.History(c.Request.Context(), userID, c.Query("testType"), limit)
	if err != nil {
		respondError(c, "Failed to load test history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func (h *ResultHandler) GetResult(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}
	result, err := h.Service.Result(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, "Result not found", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ResultHandler) Stats(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}
	stats, err := h.Service.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to compute statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
