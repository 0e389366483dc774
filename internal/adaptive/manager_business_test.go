package adaptive

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// Fresh learner, one right and one wrong answer.
func TestBusinessFreshLearnerMixedSubmission(t *testing.T) {
	ledger := newMemoryLedger()
	m := NewManager(ledger, catalogWith("ch2-001", "ch2-002"), nil)

	result, err := m.RecordSubmission(context.Background(), "learner-1", []Answer{
		{QuestionID: "ch2-001", WasCorrect: true},
		{QuestionID: "ch2-002", WasCorrect: false},
	}, submittedAt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("Expected 2 updated records, got %d", len(result.Records))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}

	right, ok := ledger.get("learner-1", "ch2-001")
	if !ok {
		t.Fatal("Expected a record for ch2-001")
	}
	wrong, ok := ledger.get("learner-1", "ch2-002")
	if !ok {
		t.Fatal("Expected a record for ch2-002")
	}

	if right.TimesAnswered != 1 || right.TimesCorrect != 1 || right.TimesIncorrect != 0 {
		t.Errorf("Unexpected counters for correct answer: %+v", right)
	}
	if wrong.TimesAnswered != 1 || wrong.TimesCorrect != 0 || wrong.TimesIncorrect != 1 {
		t.Errorf("Unexpected counters for incorrect answer: %+v", wrong)
	}
	if wrong.Weight <= right.Weight {
		t.Errorf("Expected the missed question to weigh more (%f vs %f)", wrong.Weight, right.Weight)
	}
}

// Unknown ids are dropped with a warning while the rest still count.
func TestBusinessPartialSubmission(t *testing.T) {
	ledger := newMemoryLedger()
	m := NewManager(ledger, catalogWith("ch3-001"), nil)

	result, err := m.RecordSubmission(context.Background(), "learner-1", []Answer{
		{QuestionID: "ch3-001", WasCorrect: false},
		{QuestionID: "retired-42", WasCorrect: true},
		{QuestionID: "", WasCorrect: true},
	}, submittedAt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Records) != 1 {
		t.Errorf("Expected 1 updated record, got %d", len(result.Records))
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %d", len(result.Warnings))
	}
	for _, w := range result.Warnings {
		if w.Code != WarningUnknownQuestionID {
			t.Errorf("Expected %s warning, got %s", WarningUnknownQuestionID, w.Code)
		}
	}
	if result.Warnings[0].QuestionID != "retired-42" {
		t.Errorf("Expected warning for retired-42, got %s", result.Warnings[0].QuestionID)
	}
	if _, ok := ledger.get("learner-1", "retired-42"); ok {
		t.Error("Expected no record for an unknown question")
	}
}

// Repeated answers to one question in a batch all land, in order.
func TestBusinessRepeatedQuestionInBatch(t *testing.T) {
	ledger := newMemoryLedger()
	m := NewManager(ledger, catalogWith("ch4-007"), nil)

	_, err := m.RecordSubmission(context.Background(), "learner-1", []Answer{
		{QuestionID: "ch4-007", WasCorrect: false},
		{QuestionID: "ch4-007", WasCorrect: true},
		{QuestionID: "ch4-007", WasCorrect: false},
	}, submittedAt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec, _ := ledger.get("learner-1", "ch4-007")
	if rec.TimesAnswered != 3 || rec.TimesCorrect != 1 || rec.TimesIncorrect != 2 {
		t.Errorf("Unexpected counters: %+v", rec)
	}
	if rec.Version != 3 {
		t.Errorf("Expected 3 sequential upserts, got version %d", rec.Version)
	}
}

// History accrues across submissions: 5 answers, 1 right, last miss 30 days old.
func TestBusinessAccruedHistoryWeight(t *testing.T) {
	ledger := newMemoryLedger()
	m := NewManager(ledger, catalogWith("q1"), nil)
	start := submittedAt.Add(-34 * 24 * time.Hour)

	outcomes := []bool{false, false, true, false, false}
	for i, correct := range outcomes {
		at := start.Add(time.Duration(i) * 24 * time.Hour)
		if _, err := m.RecordSubmission(context.Background(), "learner-1", []Answer{{QuestionID: "q1", WasCorrect: correct}}, at); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	rec, _ := ledger.get("learner-1", "q1")
	if rec.TimesAnswered != 5 || rec.TimesCorrect != 1 {
		t.Fatalf("Unexpected counters: %+v", rec)
	}
	if age := submittedAt.Sub(*rec.LastIncorrect); age < 29*24*time.Hour {
		t.Fatalf("Expected the last miss to be about 30 days old, got %v", age)
	}
	// Stored weight was computed at the last submission, when the miss was fresh.
	if rec.Weight < 2.4 || rec.Weight > 2.5 {
		t.Errorf("Expected stored weight 1.62*1.5=2.43, got %f", rec.Weight)
	}
}

// Distinct questions are updated concurrently, bounded by Parallelism.
func TestBusinessParallelismIsBounded(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.delay = 20 * time.Millisecond

	var ids []string
	var answers []Answer
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("q-%02d", i)
		ids = append(ids, id)
		answers = append(answers, Answer{QuestionID: id, WasCorrect: i%2 == 0})
	}
	m := NewManager(ledger, catalogWith(ids...), &AdaptiveConfig{Parallelism: 4})

	result, err := m.RecordSubmission(context.Background(), "learner-1", answers, submittedAt)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Records) != 12 {
		t.Errorf("Expected 12 records, got %d", len(result.Records))
	}
	if max := ledger.maxInFlight.Load(); max > 4 {
		t.Errorf("Expected at most 4 concurrent upserts, saw %d", max)
	}
	if max := ledger.maxInFlight.Load(); max < 2 {
		t.Errorf("Expected upserts to overlap, saw %d", max)
	}
	for i, rec := range result.Records {
		if rec.QuestionID != ids[i] {
			t.Errorf("Expected records in submission order, %d is %s", i, rec.QuestionID)
		}
	}
}

// A storage failure surfaces instead of being swallowed.
func TestBusinessStorageFailureSurfaces(t *testing.T) {
	down := errors.New("write concern timeout")
	ledger := newMemoryLedger()
	ledger.failOn = "q-bad"
	ledger.err = down
	m := NewManager(ledger, catalogWith("q-ok", "q-bad"), nil)

	_, err := m.RecordSubmission(context.Background(), "learner-1", []Answer{
		{QuestionID: "q-ok", WasCorrect: true},
		{QuestionID: "q-bad", WasCorrect: true},
	}, submittedAt)
	if !errors.Is(err, down) {
		t.Errorf("Expected storage error, got %v", err)
	}
}

// Different learners never share records.
func TestBusinessLearnersAreIsolated(t *testing.T) {
	ledger := newMemoryLedger()
	m := NewManager(ledger, catalogWith("q1"), nil)

	if _, err := m.RecordSubmission(context.Background(), "learner-a", []Answer{{QuestionID: "q1", WasCorrect: true}}, submittedAt); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RecordSubmission(context.Background(), "learner-b", []Answer{{QuestionID: "q1", WasCorrect: false}}, submittedAt); err != nil {
		t.Fatal(err)
	}

	a, _ := ledger.get("learner-a", "q1")
	b, _ := ledger.get("learner-b", "q1")
	if a.TimesCorrect != 1 || a.TimesIncorrect != 0 {
		t.Errorf("Unexpected record for learner-a: %+v", a)
	}
	if b.TimesCorrect != 0 || b.TimesIncorrect != 1 {
		t.Errorf("Unexpected record for learner-b: %+v", b)
	}
}
