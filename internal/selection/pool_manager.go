package selection

import (
	"context"
	"fmt"
	"time"

	"practice-service/internal/models"
)

// Catalog is the read-only question bank.
type Catalog interface {
	ListActiveQuestions(ctx context.Context, category string) ([]models.Question, error)
}

// LedgerReader reads a learner's performance history.
type LedgerReader interface {
	GetRecords(ctx context.Context, learnerID string) ([]models.PerformanceRecord, error)
}

// PoolManager builds practice sets from the catalog and the learner's ledger
type PoolManager struct {
	catalog  Catalog
	ledger   LedgerReader
	selector *WeightedSelector
	now      func() time.Time
}

// NewPoolManager creates a new pool manager
func NewPoolManager(catalog Catalog, ledger LedgerReader) *PoolManager {
	return &PoolManager{
		catalog:  catalog,
		ledger:   ledger,
		selector: NewWeightedSelector(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithSelector replaces the sampler, e.g. with a seeded one in tests.
func (pm *PoolManager) WithSelector(selector *WeightedSelector) *PoolManager {
	pm.selector = selector
	return pm
}

// WithClock replaces the clock used for the recency window.
func (pm *PoolManager) WithClock(now func() time.Time) *PoolManager {
	pm.now = now
	return pm
}

// SelectPracticeSet returns up to count active questions (optionally of a
// single category) weighted toward what the learner gets wrong. The answer
// key is stripped from every returned question.
func (pm *PoolManager) SelectPracticeSet(ctx context.Context, req SelectionRequest) (*SelectionResult, error) {
	if req.Count <= 0 {
		return &SelectionResult{Questions: models.QuestionSet{}}, nil
	}

	questions, err := pm.catalog.ListActiveQuestions(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	records, err := pm.ledger.GetRecords(ctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance records: %w", err)
	}

	candidates := WeighCandidates(questions, records, pm.now())

	selected, backfilled, err := pm.selector.Select(candidates, req.Count)
	if err != nil {
		return nil, err
	}

	set := make(models.QuestionSet, len(selected))
	for i, wq := range selected {
		set[i] = wq.Question.ForPractice()
	}

	return &SelectionResult{
		Questions:       set,
		TotalCandidates: len(candidates),
		Backfilled:      backfilled,
	}, nil
}

// WeighCandidates pairs each distinct catalog question with its weight for
// this learner at now. Duplicate catalog ids keep their first occurrence.
func WeighCandidates(questions []models.Question, records []models.PerformanceRecord, now time.Time) []WeightedQuestion {
	byQuestion := make(map[string]*models.PerformanceRecord, len(records))
	for i := range records {
		byQuestion[records[i].QuestionID] = &records[i]
	}

	seen := make(map[string]bool, len(questions))
	weighted := make([]WeightedQuestion, 0, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		weighted = append(weighted, WeightedQuestion{
			Question: q,
			Weight:   WeightFor(byQuestion[q.ID], now),
		})
	}
	return weighted
}
