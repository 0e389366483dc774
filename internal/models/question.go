package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var ErrInvalidQuestion = errors.New("invalid question")

// Question is an immutable catalog entry. The ID is the human readable
// question id (e.g. "ch2-001") and doubles as the document _id.
type Question struct {
	ID            string   `bson:"_id" json:"questionId" yaml:"questionId"`
	Prompt        string   `bson:"question" json:"question" yaml:"question"`
	Options       []string `bson:"options" json:"options" yaml:"options"`
	CorrectAnswer string   `bson:"correct_answer" json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `bson:"explanation" json:"explanation" yaml:"explanation"`
	Category      string   `bson:"category" json:"category" yaml:"category"`
	Difficulty    string   `bson:"difficulty" json:"difficulty" yaml:"difficulty"`
	IsActive      bool     `bson:"is_active" json:"isActive" yaml:"isActive"`
}

// PracticeQuestion is what a learner sees while taking a test: the answer
// key and explanation are withheld.
type PracticeQuestion struct {
	ID         string   `json:"questionId"`
	Prompt     string   `json:"question"`
	Options    []string `json:"options"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
}

// QuestionSet is the ordered, deduplicated result of one selection.
type QuestionSet []PracticeQuestion

// ForPractice strips the answer key.
func (q Question) ForPractice() PracticeQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PracticeQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// IsCorrect reports whether the selected option matches the answer key.
func (q Question) IsCorrect(selected string) bool {
	return selected != "" && selected == q.CorrectAnswer
}

// Validate checks the catalog invariants enforced when seeding.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: missing questionId", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: %s has no prompt", ErrInvalidQuestion, q.ID)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: %s needs at least two options", ErrInvalidQuestion, q.ID)
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("%w: %s correct answer is not one of its options", ErrInvalidQuestion, q.ID)
	}
	if q.Category == "" {
		return fmt.Errorf("%w: %s has no category", ErrInvalidQuestion, q.ID)
	}
	switch q.Difficulty {
	case "":
		q.Difficulty = DifficultyMedium
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: %s has unknown difficulty %q", ErrInvalidQuestion, q.ID, q.Difficulty)
	}
	return nil
}

// DifficultyRank orders difficulties easy < medium < hard; unknown values sort last.
func DifficultyRank(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}
