package event

import "time"

const (
	TestSubmitted = "knowledge_test.submitted"
	TestPassed    = "knowledge_test.passed"
)

// Envelope wraps every message put on the exchange.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// TestSubmittedPayload describes a scored submission.
type TestSubmittedPayload struct {
	ResultID       string `json:"resultId"`
	UserID         string `json:"userId"`
	TestType       string `json:"testType"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
	Passed         bool   `json:"passed"`
	UnknownAnswers int    `json:"unknownAnswers"`
}

// TestPassedPayload is emitted once a learner passes a practice test.
type TestPassedPayload struct {
	ResultID   string    `json:"resultId"`
	UserID     string    `json:"userId"`
	Percentage int       `json:"percentage"`
	PassedAt   time.Time `json:"passedAt"`
}
