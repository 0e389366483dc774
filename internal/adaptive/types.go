package adaptive

import (
	"context"
	"errors"

	"practice-service/internal/models"
)

// WarningUnknownQuestionID marks an answer whose question is not in the catalog.
const WarningUnknownQuestionID = "UNKNOWN_QUESTION_ID"

var ErrMissingLearner = errors.New("learner id is required")

// Answer is one scored answer fed to the ledger
type Answer struct {
	QuestionID string `json:"questionId"`
	WasCorrect bool   `json:"wasCorrect"`
}

// Warning is a non-fatal problem with part of a submission
type Warning struct {
	Code       string `json:"code"`
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

// SubmissionResult reports what the ledger update did
type SubmissionResult struct {
	Records  []models.PerformanceRecord `json:"records"`
	Warnings []Warning                  `json:"warnings,omitempty"`
}

// Ledger is the per-learner performance store.
type Ledger interface {
	// UpsertRecord applies mutate to the stored record, or to a fresh one
	// when none exists, and returns the stored result.
	UpsertRecord(ctx context.Context, learnerID, questionID string, mutate models.RecordMutation) (*models.PerformanceRecord, error)
}

// QuestionLookup resolves catalog ids, active or not.
type QuestionLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
}

// AdaptiveConfig holds ledger update settings
type AdaptiveConfig struct {
	// Parallelism bounds concurrent upserts across distinct questions.
	Parallelism int
}

func DefaultAdaptiveConfig() *AdaptiveConfig {
	return &AdaptiveConfig{Parallelism: 8}
}
