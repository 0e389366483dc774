package service

import (
	"context"
	"sort"
	"sync"

	"practice-service/internal/models"
	"practice-service/internal/repository"
)

type fakeQuestions struct {
	questions []models.Question
	err       error
}

func (f *fakeQuestions) ListActiveQuestions(_ context.Context, category string) ([]models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Question
	for _, q := range f.questions {
		if q.IsActive && (category == "" || q.Category == category) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Question
	for _, q := range f.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, q := range f.questions {
		if q.IsActive && !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeResults struct {
	mu      sync.Mutex
	saved   []models.TestResult
	err     error
	lastArg struct {
		testType string
		limit    int
	}
}

func (f *fakeResults) Create(_ context.Context, r *models.TestResult) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *r)
	return nil
}

func (f *fakeResults) FindByUser(_ context.Context, userID, testType string, limit int) ([]models.TestResult, error) {
	f.lastArg.testType = testType
	f.lastArg.limit = limit
	var out []models.TestResult
	for _, r := range f.newestFirst(userID) {
		if testType == "" || r.TestType == testType {
			r.Questions = nil
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeResults) FindAllByUser(_ context.Context, userID string) ([]models.TestResult, error) {
	return f.newestFirst(userID), nil
}

func (f *fakeResults) FindByIDForUser(_ context.Context, id, userID string) (*models.TestResult, error) {
	for _, r := range f.saved {
		if r.ID == id && r.UserID == userID {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrResultNotFound
}

func (f *fakeResults) newestFirst(userID string) []models.TestResult {
	var out []models.TestResult
	for _, r := range f.saved {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out
}

// fakeLedger serves both the adaptive Ledger and the PerformanceReader.
type fakeLedger struct {
	mu      sync.Mutex
	records map[string]models.PerformanceRecord
	err     error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]models.PerformanceRecord{}}
}

func (f *fakeLedger) UpsertRecord(_ context.Context, learnerID, questionID string, mutate models.RecordMutation) (*models.PerformanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := learnerID + "|" + questionID
	rec, ok := f.records[k]
	if !ok {
		rec = models.NewPerformanceRecord(learnerID, questionID)
	}
	mutate(&rec)
	rec.Version++
	f.records[k] = rec
	out := rec
	return &out, nil
}

func (f *fakeLedger) GetRecords(_ context.Context, learnerID string) ([]models.PerformanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PerformanceRecord
	for _, rec := range f.records {
		if rec.LearnerID == learnerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

type publishedEvent struct {
	Type    string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Type: eventType, Payload: payload})
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}
