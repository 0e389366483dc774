package handlers

import (
	"errors"
	"log"
	"net/http"

	"practice-service/internal/adaptive"
	"practice-service/internal/middleware"
	"practice-service/internal/repository"
	"practice-service/internal/selection"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes. Anything unrecognised
// comes from the stores and is reported as unavailable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, selection.ErrNoQuestionsAvailable),
		errors.Is(err, repository.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrLedgerConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrNoScorableAnswers),
		errors.Is(err, service.ErrInvalidTestType),
		errors.Is(err, service.ErrNegativeTimeSpent):
		return http.StatusBadRequest
	case errors.Is(err, adaptive.ErrMissingLearner):
		return http.StatusUnauthorized
	}
	return http.StatusServiceUnavailable
}

func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %s: %v", c.Request.Method, c.FullPath(), message, err)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// learnerID returns the authenticated learner or aborts with 401.
func learnerID(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return userID, true
}
