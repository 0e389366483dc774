package selection

import (
	"errors"

	"practice-service/internal/models"
)

// ErrNoQuestionsAvailable means the catalog, after filtering, is empty.
var ErrNoQuestionsAvailable = errors.New("no questions available")

// WeightedQuestion is a candidate with its selection weight
type WeightedQuestion struct {
	Question models.Question `json:"question"`
	Weight   float64         `json:"weight"`
}

// SelectionRequest asks for a practice set for one learner
type SelectionRequest struct {
	LearnerID string `json:"learner_id"`
	Count     int    `json:"count"`
	Category  string `json:"category,omitempty"`
}

// SelectionResult contains the selected questions and metadata
type SelectionResult struct {
	Questions       models.QuestionSet `json:"questions"`
	TotalCandidates int                `json:"total_candidates"`
	// Backfilled counts picks made by the unweighted fallback.
	Backfilled int `json:"backfilled"`
}
