package models

// SubmittedAnswer is one learner answer as posted by the client.
type SubmittedAnswer struct {
	QuestionID     string `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// ScoredAnswer is a submitted answer after comparison with the catalog.
type ScoredAnswer struct {
	QuestionID     string `bson:"question_id" json:"questionId"`
	Question       string `bson:"question" json:"question"`
	SelectedAnswer string `bson:"selected_answer" json:"selectedAnswer"`
	CorrectAnswer  string `bson:"correct_answer" json:"correctAnswer"`
	Explanation    string `bson:"explanation,omitempty" json:"explanation,omitempty"`
	IsCorrect      bool   `bson:"is_correct" json:"isCorrect"`
}
