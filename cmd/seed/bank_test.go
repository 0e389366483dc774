package main

import (
	"errors"
	"os"
	"strings"
	"testing"

	"practice-service/internal/models"
)

const validBank = `
questions:
  - questionId: ch2-002
    question: "THIS IS THE SHAPE AND COLOR OF A __________ SIGN."
    options: [Stop, Wrong Way, Yield, Do not enter]
    correctAnswer: Yield
    category: chapter-2-signs
    difficulty: easy
  - questionId: ch2-900
    question: Retired question
    options: [A, B]
    correctAnswer: A
    category: chapter-2-signs
    isActive: false
`

func TestLoadBank(t *testing.T) {
	questions, err := loadBank(strings.NewReader(validBank))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if !questions[0].IsActive {
		t.Error("Expected entries without isActive to default to active")
	}
	if questions[1].IsActive {
		t.Error("Expected explicit isActive: false to be kept")
	}
	if questions[1].Difficulty != models.DifficultyMedium {
		t.Errorf("Expected missing difficulty to default to medium, got %q", questions[1].Difficulty)
	}
	if questions[0].CorrectAnswer != "Yield" || len(questions[0].Options) != 4 {
		t.Errorf("Unexpected decode: %+v", questions[0])
	}
}

func TestLoadBankReportsEveryProblem(t *testing.T) {
	bank := `
questions:
  - questionId: a
    question: No key among options
    options: [A, B]
    correctAnswer: C
    category: x
  - questionId: b
    question: Too few options
    options: [A]
    correctAnswer: A
    category: x
  - questionId: c
    question: Fine
    options: [A, B]
    correctAnswer: A
    category: x
  - questionId: c
    question: Duplicate
    options: [A, B]
    correctAnswer: A
    category: x
  - questionId: d
    question: Odd difficulty
    options: [A, B]
    correctAnswer: A
    category: x
    difficulty: brutal
`
	_, err := loadBank(strings.NewReader(bank))
	if !errors.Is(err, models.ErrInvalidQuestion) {
		t.Fatalf("Expected ErrInvalidQuestion, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"entry 1", "entry 2", "entry 4", "duplicate questionId c", "entry 5"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in error:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "entry 3") {
		t.Errorf("Did not expect the valid entry to be reported:\n%s", msg)
	}
}

func TestLoadBankRejectsEmptyAndMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":     "questions: []\n",
		"malformed": "questions: [\n",
		"wrong key": "items:\n  - questionId: a\n",
	} {
		if _, err := loadBank(strings.NewReader(input)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestShippedBankIsValid(t *testing.T) {
	f, err := os.Open("../../data/questions.yaml")
	if err != nil {
		t.Fatalf("Failed to open bank: %v", err)
	}
	defer f.Close()

	questions, err := loadBank(f)
	if err != nil {
		t.Fatalf("Shipped bank is invalid: %v", err)
	}
	if len(questions) < 18 {
		t.Errorf("Expected at least a full test worth of questions, got %d", len(questions))
	}
	counts := summarize(questions)
	if counts["chapter-2-signs"] == 0 {
		t.Errorf("Expected chapter-2-signs questions, got %v", counts)
	}
}
