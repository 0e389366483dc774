package handlers

import (
	"context"
	"net/http"
	"strconv"

	"practice-service/internal/selection"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PracticeAPI interface {
	DefaultQuestionCount() int
	SelectPracticeSet(ctx context.Context, learnerID string, count int, category string) (*selection.SelectionResult, error)
	SubmitTest(ctx context.Context, learnerID string, req service.SubmitRequest) (*service.SubmitResponse, error)
}

type PracticeHandler struct {
	Service PracticeAPI
}

func NewPracticeHandler(s PracticeAPI) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

// GetQuestions serves a practice test: GET /questions?count=&category=
func (h *PracticeHandler) GetQuestions(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}

	count := h.Service.DefaultQuestionCount()
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer", "details": err.Error()})
			return
		}
		count = n
	}

	result, err := h.Service.SelectPracticeSet(c.Request.Context(), userID, count, c.Query("category"))
	if err != nil {
		respondError(c, "Failed to select practice questions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions":      result.Questions,
		"totalQuestions": len(result.Questions),
		"poolSize":       result.TotalCandidates,
	})
}

// Submit scores a completed test: POST /submit
func (h *PracticeHandler) Submit(c *gin.Context) {
	userID, ok := learnerID(c)
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission", "details": err.Error()})
		return
	}

	resp, err := h.Service.SubmitTest(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "Failed to submit test", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
