package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"practice-service/internal/adaptive"
	"practice-service/internal/config"
	"practice-service/internal/event"
	"practice-service/internal/metrics"
	"practice-service/internal/models"
	"practice-service/internal/selection"

	"github.com/google/uuid"
)

var (
	ErrEmptySubmission   = errors.New("submission has no answers")
	ErrNoScorableAnswers = errors.New("none of the submitted questions exist")
	ErrInvalidTestType   = errors.New("invalid test type")
	ErrNegativeTimeSpent = errors.New("time spent cannot be negative")
)

// SubmitRequest is one completed test as posted by the learner.
type SubmitRequest struct {
	Answers          []models.SubmittedAnswer `json:"answers" binding:"required,dive"`
	TimeSpentSeconds int                      `json:"timeSpent"`
	TestType         string                   `json:"testType"`
}

// SubmitResponse is the scored result plus anything dropped along the way.
type SubmitResponse struct {
	Result   *models.TestResult `json:"result"`
	Warnings []adaptive.Warning `json:"warnings,omitempty"`
}

type PracticeService struct {
	questions QuestionStore
	results   ResultStore
	pool      *selection.PoolManager
	ledger    *adaptive.Manager
	publisher Publisher
	cfg       config.PracticeConfig
	now       func() time.Time
	newID     func() string
}

func NewPracticeService(
	questions QuestionStore,
	results ResultStore,
	pool *selection.PoolManager,
	ledger *adaptive.Manager,
	publisher Publisher,
	cfg config.PracticeConfig,
) *PracticeService {
	return &PracticeService{
		questions: questions,
		results:   results,
		pool:      pool,
		ledger:    ledger,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// DefaultQuestionCount is used when the caller does not ask for a size.
func (s *PracticeService) DefaultQuestionCount() int {
	return s.cfg.DefaultQuestionCount
}

// SelectPracticeSet draws a practice test for the learner.
func (s *PracticeService) SelectPracticeSet(ctx context.Context, learnerID string, count int, category string) (*selection.SelectionResult, error) {
	start := time.Now()
	defer func() { metrics.SelectionDuration.Observe(time.Since(start).Seconds()) }()

	result, err := s.pool.SelectPracticeSet(ctx, selection.SelectionRequest{
		LearnerID: learnerID,
		Count:     count,
		Category:  category,
	})
	switch {
	case errors.Is(err, selection.ErrNoQuestionsAvailable):
		metrics.Selections.WithLabelValues("no_questions").Inc()
		return nil, err
	case err != nil:
		metrics.Selections.WithLabelValues("error").Inc()
		log.Printf("Practice selection failed for %s: %v", learnerID, err)
		return nil, err
	case len(result.Questions) == 0:
		metrics.Selections.WithLabelValues("empty").Inc()
	default:
		metrics.Selections.WithLabelValues("success").Inc()
	}
	if result.Backfilled > 0 {
		metrics.BackfilledPicks.Add(float64(result.Backfilled))
		log.Printf("Practice set for %s backfilled %d of %d picks", learnerID, result.Backfilled, len(result.Questions))
	}
	return result, nil
}

// SubmitTest scores the answers, stores the result, updates the learner's
// ledger and announces the outcome.
func (s *PracticeService) SubmitTest(ctx context.Context, learnerID string, req SubmitRequest) (*SubmitResponse, error) {
	if learnerID == "" {
		return nil, adaptive.ErrMissingLearner
	}
	if len(req.Answers) == 0 {
		return nil, ErrEmptySubmission
	}
	if req.TestType == "" {
		req.TestType = models.TestTypePractice
	}
	if !models.ValidTestType(req.TestType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTestType, req.TestType)
	}
	if req.TimeSpentSeconds < 0 {
		return nil, ErrNegativeTimeSpent
	}

	now := s.now()
	scored, ledgerAnswers, err := s.score(ctx, req.Answers)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, ErrNoScorableAnswers
	}

	correct := 0
	for _, a := range scored {
		if a.IsCorrect {
			correct++
		}
	}
	total := len(scored)
	result := &models.TestResult{
		ID:               s.newID(),
		UserID:           learnerID,
		TestType:         req.TestType,
		Score:            correct,
		TotalQuestions:   total,
		Percentage:       percentage(correct, total),
		Passed:           s.passed(correct, total),
		Questions:        scored,
		TimeSpentSeconds: req.TimeSpentSeconds,
		CompletedAt:      now,
	}

	if err := s.results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save test result: %w", err)
	}

	ledgerResult, err := s.ledger.RecordSubmission(ctx, learnerID, ledgerAnswers, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update performance ledger: %w", err)
	}

	metrics.Submissions.WithLabelValues(result.TestType, strconv.FormatBool(result.Passed)).Inc()
	warnings := unknownWarnings(req.Answers, scored)
	warnings = mergeWarnings(warnings, ledgerResult.Warnings)
	s.announce(ctx, result, len(warnings))

	return &SubmitResponse{Result: result, Warnings: warnings}, nil
}

// score compares each answer with the catalog; unknown ids are skipped.
func (s *PracticeService) score(ctx context.Context, answers []models.SubmittedAnswer) ([]models.ScoredAnswer, []adaptive.Answer, error) {
	ids := make([]string, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.QuestionID != "" && !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}

	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up submitted questions: %w", err)
	}
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	scored := make([]models.ScoredAnswer, 0, len(answers))
	ledgerAnswers := make([]adaptive.Answer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		isCorrect := q.IsCorrect(a.SelectedAnswer)
		scored = append(scored, models.ScoredAnswer{
			QuestionID:     q.ID,
			Question:       q.Prompt,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			Explanation:    q.Explanation,
			IsCorrect:      isCorrect,
		})
		ledgerAnswers = append(ledgerAnswers, adaptive.Answer{QuestionID: q.ID, WasCorrect: isCorrect})
	}
	return scored, ledgerAnswers, nil
}

func (s *PracticeService) passed(correct, total int) bool {
	if total == 0 || s.cfg.PassOutOf <= 0 {
		return false
	}
	return correct*s.cfg.PassOutOf >= total*s.cfg.PassCorrect
}

func (s *PracticeService) announce(ctx context.Context, result *models.TestResult, unknown int) {
	if s.publisher == nil {
		return
	}
	submitted := event.TestSubmittedPayload{
		ResultID:       result.ID,
		UserID:         result.UserID,
		TestType:       result.TestType,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		Passed:         result.Passed,
		UnknownAnswers: unknown,
	}
	if err := s.publisher.Publish(ctx, event.TestSubmitted, submitted); err != nil {
		log.Printf("Failed to publish %s for %s: %v", event.TestSubmitted, result.ID, err)
	}

	if result.Passed && result.TestType == models.TestTypePractice {
		passed := event.TestPassedPayload{
			ResultID:   result.ID,
			UserID:     result.UserID,
			Percentage: result.Percentage,
			PassedAt:   result.CompletedAt,
		}
		if err := s.publisher.Publish(ctx, event.TestPassed, passed); err != nil {
			log.Printf("Failed to publish %s for %s: %v", event.TestPassed, result.ID, err)
		}
	}
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// unknownWarnings reports submitted ids that did not score, once each.
func unknownWarnings(answers []models.SubmittedAnswer, scored []models.ScoredAnswer) []adaptive.Warning {
	known := make(map[string]bool, len(scored))
	for _, a := range scored {
		known[a.QuestionID] = true
	}
	reported := make(map[string]bool)
	var warnings []adaptive.Warning
	for _, a := range answers {
		if known[a.QuestionID] || reported[a.QuestionID] {
			continue
		}
		reported[a.QuestionID] = true
		warnings = append(warnings, adaptive.Warning{
			Code:       adaptive.WarningUnknownQuestionID,
			QuestionID: a.QuestionID,
			Message:    "question not found in catalog; answer was not scored",
		})
	}
	return warnings
}

// mergeWarnings appends ledger warnings not already reported for the same id.
func mergeWarnings(base, extra []adaptive.Warning) []adaptive.Warning {
	seen := make(map[string]bool, len(base))
	for _, w := range base {
		seen[w.Code+"|"+w.QuestionID] = true
	}
	for _, w := range extra {
		if !seen[w.Code+"|"+w.QuestionID] {
			seen[w.Code+"|"+w.QuestionID] = true
			base = append(base, w)
		}
	}
	return base
}
