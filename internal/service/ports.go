package service

import (
	"context"

	"practice-service/internal/models"
)

// QuestionStore is the catalog as seen by the services.
type QuestionStore interface {
	ListActiveQuestions(ctx context.Context, category string) ([]models.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

type ResultStore interface {
	Create(ctx context.Context, result *models.TestResult) error
	FindByUser(ctx context.Context, userID, testType string, limit int) ([]models.TestResult, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.TestResult, error)
	FindByIDForUser(ctx context.Context, id, userID string) (*models.TestResult, error)
}

type PerformanceReader interface {
	GetRecords(ctx context.Context, learnerID string) ([]models.PerformanceRecord, error)
}

// Publisher puts domain events on the bus.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
