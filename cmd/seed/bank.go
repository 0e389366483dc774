package main

import (
	"errors"
	"fmt"
	"io"

	"practice-service/internal/models"

	"gopkg.in/yaml.v3"
)

type bankFile struct {
	Questions []yaml.Node `yaml:"questions"`
}

// loadBank decodes and validates a question bank. Entries default to active.
// Every invalid entry is reported, not only the first.
func loadBank(r io.Reader) ([]models.Question, error) {
	var file bankFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, errors.New("question bank is empty")
	}

	questions := make([]models.Question, 0, len(file.Questions))
	seen := make(map[string]int, len(file.Questions))
	var problems []error
	for i := range file.Questions {
		node := &file.Questions[i]
		q := models.Question{IsActive: true}
		if err := node.Decode(&q); err != nil {
			problems = append(problems, fmt.Errorf("entry %d (line %d): %w", i+1, node.Line, err))
			continue
		}
		if err := q.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("entry %d (line %d): %w", i+1, node.Line, err))
			continue
		}
		if first, dup := seen[q.ID]; dup {
			problems = append(problems, fmt.Errorf("entry %d (line %d): %w: duplicate questionId %s (first at entry %d)",
				i+1, node.Line, models.ErrInvalidQuestion, q.ID, first))
			continue
		}
		seen[q.ID] = i + 1
		questions = append(questions, q)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return questions, nil
}

// summarize counts questions per category.
func summarize(questions []models.Question) map[string]int {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[q.Category]++
	}
	return counts
}
