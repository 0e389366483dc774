package adaptive

import (
	"context"
	"fmt"
	"log"
	"time"

	"practice-service/internal/metrics"
	"practice-service/internal/models"
	"practice-service/internal/selection"

	"golang.org/x/sync/errgroup"
)

// Manager applies scored answers to the performance ledger
type Manager struct {
	ledger  Ledger
	catalog QuestionLookup
	config  *AdaptiveConfig
}

// NewManager creates a new ledger manager
func NewManager(ledger Ledger, catalog QuestionLookup, config *AdaptiveConfig) *Manager {
	if config == nil {
		config = DefaultAdaptiveConfig()
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	return &Manager{ledger: ledger, catalog: catalog, config: config}
}

// RecordSubmission updates the learner's record for every answered question.
//
// Answers for ids missing from the catalog are dropped and reported as
// warnings. Distinct questions are updated concurrently; repeated answers
// to one question are applied in submission order. A storage error aborts
// the remaining updates and is returned.
//
// Two submissions racing on the same learner and question resolve as
// last-writer-wins; this is not guarded beyond the ledger's optimistic upsert.
func (m *Manager) RecordSubmission(ctx context.Context, learnerID string, answers []Answer, now time.Time) (*SubmissionResult, error) {
	if learnerID == "" {
		return nil, ErrMissingLearner
	}
	result := &SubmissionResult{Records: []models.PerformanceRecord{}}
	if len(answers) == 0 {
		return result, nil
	}
	now = now.UTC()

	known, err := m.knownQuestions(ctx, answers)
	if err != nil {
		return nil, err
	}

	// Group by question, keeping first-seen order.
	var order []string
	grouped := make(map[string][]bool)
	for _, a := range answers {
		if !known[a.QuestionID] {
			log.Printf("Dropping answer for unknown question %q from learner %s", a.QuestionID, learnerID)
			metrics.UnknownQuestionAnswers.Inc()
			result.Warnings = append(result.Warnings, Warning{
				Code:       WarningUnknownQuestionID,
				QuestionID: a.QuestionID,
				Message:    "question not found in catalog; answer was not recorded",
			})
			continue
		}
		if _, ok := grouped[a.QuestionID]; !ok {
			order = append(order, a.QuestionID)
		}
		grouped[a.QuestionID] = append(grouped[a.QuestionID], a.WasCorrect)
	}

	updated := make([]*models.PerformanceRecord, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Parallelism)
	for i, questionID := range order {
		g.Go(func() error {
			for _, correct := range grouped[questionID] {
				rec, err := m.ledger.UpsertRecord(gctx, learnerID, questionID, func(r *models.PerformanceRecord) {
					ApplyAnswer(r, correct, now)
				})
				if err != nil {
					return fmt.Errorf("failed to update performance for %s: %w", questionID, err)
				}
				updated[i] = rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range updated {
		if rec != nil {
			result.Records = append(result.Records, *rec)
		}
	}
	return result, nil
}

func (m *Manager) knownQuestions(ctx context.Context, answers []Answer) (map[string]bool, error) {
	ids := make([]string, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.QuestionID != "" && !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}
	known := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	questions, err := m.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up answered questions: %w", err)
	}
	for _, q := range questions {
		known[q.ID] = true
	}
	return known, nil
}

// ApplyAnswer folds one answer into a record and recomputes its weight.
// The recency field for the other outcome is left as it was. LastAnswered
// never moves backwards, so an out-of-order now cannot break
// lastCorrect/lastIncorrect <= lastAnswered.
func ApplyAnswer(record *models.PerformanceRecord, wasCorrect bool, now time.Time) {
	now = now.UTC()

	record.TimesAnswered++
	marked := now
	if wasCorrect {
		record.TimesCorrect++
		record.LastCorrect = &marked
	} else {
		record.TimesIncorrect++
		record.LastIncorrect = &marked
	}

	answered := now
	if record.LastAnswered != nil && record.LastAnswered.After(now) {
		answered = *record.LastAnswered
	}
	record.LastAnswered = &answered

	record.Weight = selection.ComputeWeight(record.TimesAnswered, record.TimesCorrect, record.LastIncorrect, now)
}
