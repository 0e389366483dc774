package repository

import (
	"context"
	"errors"
	"fmt"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrResultNotFound = errors.New("test result not found")

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("test_results")}
}

// InitializeIndexes creates MongoDB indexes for history queries
func (r *ResultRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "completed_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "test_type", Value: 1},
				{Key: "completed_at", Value: -1},
			},
		},
	}

	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create result indexes: %w", err)
	}
	return nil
}

func (r *ResultRepository) Create(ctx context.Context, result *models.TestResult) error {
	_, err := r.Col.InsertOne(ctx, result)
	return err
}

// FindByUser returns a user's results newest first without per-question detail.
// An empty testType matches every type; limit <= 0 means no limit.
func (r *ResultRepository) FindByUser(ctx context.Context, userID, testType string, limit int) ([]models.TestResult, error) {
	filter := bson.M{"user_id": userID}
	if testType != "" {
		filter["test_type"] = testType
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetProjection(bson.M{"questions": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

// FindAllByUser returns every result for a user, newest first.
func (r *ResultRepository) FindAllByUser(ctx context.Context, userID string) ([]models.TestResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetProjection(bson.M{"questions": 0})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// FindByIDForUser loads one result, scoped to its owner.
func (r *ResultRepository) FindByIDForUser(ctx context.Context, id, userID string) (*models.TestResult, error) {
	var result models.TestResult
	err := r.Col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.TestResult, error) {
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	results := []models.TestResult{}
	for cur.Next(ctx) {
		var res models.TestResult
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, cur.Err()
}
