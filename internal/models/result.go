package models

import "time"

const (
	TestTypePractice = "practice"
	TestTypeOfficial = "official"
)

// ValidTestType reports whether t is a known test type.
func ValidTestType(t string) bool {
	return t == TestTypePractice || t == TestTypeOfficial
}

type TestResult struct {
	ID               string         `bson:"_id" json:"id"`
	UserID           string         `bson:"user_id" json:"userId"`
	TestType         string         `bson:"test_type" json:"testType"`
	Score            int            `bson:"score" json:"score"`
	TotalQuestions   int            `bson:"total_questions" json:"totalQuestions"`
	Percentage       int            `bson:"percentage" json:"percentage"`
	Passed           bool           `bson:"passed" json:"passed"`
	Questions        []ScoredAnswer `bson:"questions,omitempty" json:"questions,omitempty"`
	TimeSpentSeconds int            `bson:"time_spent" json:"timeSpent"`
	CompletedAt      time.Time      `bson:"completed_at" json:"completedAt"`
}

// TestSummary is a compact view of a TestResult used by history and stats.
type TestSummary struct {
	ID          string    `json:"id"`
	Score       int       `json:"score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completedAt"`
	TestType    string    `json:"testType"`
}

func (r TestResult) Summary() TestSummary {
	return TestSummary{
		ID:          r.ID,
		Score:       r.Score,
		Passed:      r.Passed,
		CompletedAt: r.CompletedAt,
		TestType:    r.TestType,
	}
}

type TestStats struct {
	TotalTests     int           `json:"totalTests"`
	AverageScore   int           `json:"averageScore"`
	BestScore      int           `json:"bestScore"`
	PassRate       int           `json:"passRate"`
	TotalTimeSpent int           `json:"totalTimeSpent"`
	RecentTests    []TestSummary `json:"recentTests,omitempty"`
}
