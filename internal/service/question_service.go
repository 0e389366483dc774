package service

import (
	"context"
	"sort"
	"time"

	"practice-service/internal/models"
	"practice-service/internal/selection"
)

// CategoryMaterials is one category of the study guide.
type CategoryMaterials struct {
	Category  string            `json:"category"`
	Questions []models.Question `json:"questions"`
}

// PerformanceEntry is a ledger record with its weight as of the request.
type PerformanceEntry struct {
	models.PerformanceRecord
	CurrentWeight  float64 `json:"currentWeight"`
	CorrectRate    float64 `json:"correctRate"`
	RecentlyMissed bool    `json:"recentlyMissed"`
}

type QuestionService struct {
	questions QuestionStore
	ledger    PerformanceReader
	now       func() time.Time
}

func NewQuestionService(questions QuestionStore, ledger PerformanceReader) *QuestionService {
	return &QuestionService{
		questions: questions,
		ledger:    ledger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuestionService) Categories(ctx context.Context) ([]string, error) {
	return s.questions.Categories(ctx)
}

// StudyMaterials groups the active catalog by category, easiest first within each.
func (s *QuestionService) StudyMaterials(ctx context.Context, category string) ([]CategoryMaterials, error) {
	questions, err := s.questions.ListActiveQuestions(ctx, category)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return models.DifficultyRank(sorted[i].Difficulty) < models.DifficultyRank(sorted[j].Difficulty)
	})

	groups := []CategoryMaterials{}
	for _, q := range sorted {
		if n := len(groups); n == 0 || groups[n-1].Category != q.Category {
			groups = append(groups, CategoryMaterials{Category: q.Category})
		}
		last := &groups[len(groups)-1]
		last.Questions = append(last.Questions, q)
	}
	return groups, nil
}

// Performance lists the learner's records, weakest (heaviest) first.
func (s *QuestionService) Performance(ctx context.Context, learnerID string) ([]PerformanceEntry, error) {
	records, err := s.ledger.GetRecords(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	entries := make([]PerformanceEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, PerformanceEntry{
			PerformanceRecord: rec,
			CurrentWeight:     selection.WeightFor(&rec, now),
			CorrectRate:       rec.CorrectRate(),
			RecentlyMissed:    selection.RecentlyMissed(rec.LastIncorrect, now),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CurrentWeight != entries[j].CurrentWeight {
			return entries[i].CurrentWeight > entries[j].CurrentWeight
		}
		return entries[i].QuestionID < entries[j].QuestionID
	})
	return entries, nil
}
