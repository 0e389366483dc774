package selection

import (
	"time"

	"practice-service/internal/models"
)

const (
	MinWeight     = 0.1
	MaxWeight     = 5.0
	DefaultWeight = 1.0

	// RecencyWindow is how long a wrong answer keeps boosting a question.
	RecencyWindow = 7 * 24 * time.Hour
	RecencyBonus  = 1.5

	baseIntercept = 2.0
	baseSlope     = 1.9
)

// BaseWeight maps a correct rate onto the linear inverse scale, clamped.
// 100% correct gives 0.1, 0% correct gives 2.0.
func BaseWeight(timesAnswered, timesCorrect int) float64 {
	if timesAnswered <= 0 {
		return DefaultWeight
	}
	correctRate := float64(timesCorrect) / float64(timesAnswered)
	return clamp(baseIntercept - correctRate*baseSlope)
}

// RawWeight is the weight before the final clamp. It only differs from
// ComputeWeight when the recency bonus pushes the base past MaxWeight.
func RawWeight(timesAnswered, timesCorrect int, lastIncorrect *time.Time, now time.Time) float64 {
	if timesAnswered <= 0 {
		return DefaultWeight
	}
	weight := BaseWeight(timesAnswered, timesCorrect)
	if RecentlyMissed(lastIncorrect, now) {
		weight *= RecencyBonus
	}
	return weight
}

// ComputeWeight is the sampling weight for one learner/question history.
// It is a pure function of its inputs; all instants are compared in UTC.
func ComputeWeight(timesAnswered, timesCorrect int, lastIncorrect *time.Time, now time.Time) float64 {
	return clamp(RawWeight(timesAnswered, timesCorrect, lastIncorrect, now))
}

// WeightFor computes the weight for a ledger record, or DefaultWeight for nil.
func WeightFor(record *models.PerformanceRecord, now time.Time) float64 {
	if record == nil {
		return DefaultWeight
	}
	return ComputeWeight(record.TimesAnswered, record.TimesCorrect, record.LastIncorrect, now)
}

// RecentlyMissed reports whether lastIncorrect falls inside RecencyWindow.
// A timestamp ahead of now (clock skew) counts as recent.
func RecentlyMissed(lastIncorrect *time.Time, now time.Time) bool {
	if lastIncorrect == nil || lastIncorrect.IsZero() {
		return false
	}
	return now.UTC().Sub(lastIncorrect.UTC()) < RecencyWindow
}

func clamp(weight float64) float64 {
	if weight < MinWeight {
		return MinWeight
	}
	if weight > MaxWeight {
		return MaxWeight
	}
	return weight
}
