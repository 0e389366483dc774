package service

import (
	"context"
	"testing"
	"time"

	"practice-service/internal/models"
)

func TestStudyMaterialsGroupsAndSorts(t *testing.T) {
	questions := &fakeQuestions{questions: []models.Question{
		{ID: "s-hard", Category: "signs", Difficulty: models.DifficultyHard, IsActive: true},
		{ID: "r-med", Category: "rules", Difficulty: models.DifficultyMedium, IsActive: true},
		{ID: "s-easy", Category: "signs", Difficulty: models.DifficultyEasy, IsActive: true},
		{ID: "r-easy", Category: "rules", Difficulty: models.DifficultyEasy, IsActive: true},
		{ID: "retired", Category: "signs", Difficulty: models.DifficultyEasy, IsActive: false},
	}}
	svc := NewQuestionService(questions, newFakeLedger())

	groups, err := svc.StudyMaterials(context.Background(), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(groups) != 2 || groups[0].Category != "rules" || groups[1].Category != "signs" {
		t.Fatalf("Expected rules then signs, got %+v", groups)
	}
	want := [][]string{{"r-easy", "r-med"}, {"s-easy", "s-hard"}}
	for i, g := range groups {
		if len(g.Questions) != len(want[i]) {
			t.Fatalf("Unexpected group size for %s: %d", g.Category, len(g.Questions))
		}
		for j, q := range g.Questions {
			if q.ID != want[i][j] {
				t.Errorf("Group %s position %d: expected %s, got %s", g.Category, j, want[i][j], q.ID)
			}
		}
	}
}

func TestStudyMaterialsSingleCategory(t *testing.T) {
	svc := NewQuestionService(&fakeQuestions{questions: questionBank(6)}, newFakeLedger())

	groups, err := svc.StudyMaterials(context.Background(), "signs")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Questions) != 3 {
		t.Errorf("Expected one group of 3, got %+v", groups)
	}
}

func TestCategories(t *testing.T) {
	svc := NewQuestionService(&fakeQuestions{questions: questionBank(4)}, newFakeLedger())

	categories, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(categories) != 2 || categories[0] != "rules-of-the-road" || categories[1] != "signs" {
		t.Errorf("Unexpected categories: %v", categories)
	}
}

func TestPerformanceWeakestFirst(t *testing.T) {
	ledger := newFakeLedger()
	recent := fixedNow.Add(-24 * time.Hour)
	stale := fixedNow.Add(-30 * 24 * time.Hour)
	ledger.records["learner-1|mastered"] = models.PerformanceRecord{
		LearnerID: "learner-1", QuestionID: "mastered", TimesAnswered: 4, TimesCorrect: 4,
		LastAnswered: &recent, LastCorrect: &recent,
	}
	ledger.records["learner-1|weak"] = models.PerformanceRecord{
		LearnerID: "learner-1", QuestionID: "weak", TimesAnswered: 2, TimesIncorrect: 2,
		LastAnswered: &recent, LastIncorrect: &recent,
	}
	ledger.records["learner-1|faded"] = models.PerformanceRecord{
		LearnerID: "learner-1", QuestionID: "faded", TimesAnswered: 2, TimesIncorrect: 2,
		LastAnswered: &stale, LastIncorrect: &stale, Weight: 3.0,
	}
	ledger.records["learner-2|weak"] = models.PerformanceRecord{LearnerID: "learner-2", QuestionID: "weak"}

	svc := NewQuestionService(&fakeQuestions{}, ledger)
	svc.now = func() time.Time { return fixedNow }

	entries, err := svc.Performance(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	order := []string{entries[0].QuestionID, entries[1].QuestionID, entries[2].QuestionID}
	if order[0] != "weak" || order[1] != "faded" || order[2] != "mastered" {
		t.Errorf("Expected weak, faded, mastered; got %v", order)
	}
	if !entries[0].RecentlyMissed || entries[1].RecentlyMissed {
		t.Error("Expected only the fresh miss to be flagged recent")
	}
	// The stored 3.0 has decayed to the stale base weight.
	if entries[1].CurrentWeight != 2.0 {
		t.Errorf("Expected faded weight 2.0, got %f", entries[1].CurrentWeight)
	}
}
