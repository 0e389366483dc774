package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PerformanceRecord is one learner's history with one question.
// Key is (LearnerID, QuestionID); records are never deleted.
type PerformanceRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	LearnerID      string             `bson:"learner_id" json:"learnerId"`
	QuestionID     string             `bson:"question_id" json:"questionId"`
	TimesAnswered  int                `bson:"times_answered" json:"timesAnswered"`
	TimesCorrect   int                `bson:"times_correct" json:"timesCorrect"`
	TimesIncorrect int                `bson:"times_incorrect" json:"timesIncorrect"`
	LastAnswered   *time.Time         `bson:"last_answered,omitempty" json:"lastAnswered,omitempty"`
	LastCorrect    *time.Time         `bson:"last_correct,omitempty" json:"lastCorrect,omitempty"`
	LastIncorrect  *time.Time         `bson:"last_incorrect,omitempty" json:"lastIncorrect,omitempty"`
	Weight         float64            `bson:"weight" json:"weight"`
	Version        int64              `bson:"version" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RecordMutation edits a record in place inside a ledger upsert.
type RecordMutation func(record *PerformanceRecord)

// NewPerformanceRecord returns the zero-history record used on first answer.
func NewPerformanceRecord(learnerID, questionID string) PerformanceRecord {
	return PerformanceRecord{
		LearnerID:  learnerID,
		QuestionID: questionID,
		Weight:     1.0,
	}
}

// CorrectRate is timesCorrect/timesAnswered, or 0 with no history.
func (r PerformanceRecord) CorrectRate() float64 {
	if r.TimesAnswered == 0 {
		return 0
	}
	return float64(r.TimesCorrect) / float64(r.TimesAnswered)
}

// Consistent reports whether the counter and timestamp invariants hold.
func (r PerformanceRecord) Consistent() bool {
	if r.TimesAnswered < 0 || r.TimesCorrect < 0 || r.TimesIncorrect < 0 {
		return false
	}
	if r.TimesAnswered != r.TimesCorrect+r.TimesIncorrect {
		return false
	}
	if r.LastAnswered == nil {
		return r.LastCorrect == nil && r.LastIncorrect == nil
	}
	if r.LastCorrect != nil && r.LastCorrect.After(*r.LastAnswered) {
		return false
	}
	if r.LastIncorrect != nil && r.LastIncorrect.After(*r.LastAnswered) {
		return false
	}
	return true
}
