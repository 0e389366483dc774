package repository

import (
	"context"
	"fmt"
	"sort"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

// InitializeIndexes creates MongoDB indexes for catalog reads
func (r *QuestionRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "category", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "difficulty", Value: 1},
			},
		},
	}

	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}
	return nil
}

// ListActiveQuestions returns active questions, optionally of one category.
func (r *QuestionRepository) ListActiveQuestions(ctx context.Context, category string) ([]models.Question, error) {
	filter := bson.M{"is_active": true}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

// FindByIDs returns the questions with the given ids, active or not.
// Missing ids are simply absent from the result.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Categories lists the distinct categories of active questions, sorted.
func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.Col.Distinct(ctx, "category", bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// UpsertMany replaces or inserts each question by id.
func (r *QuestionRepository) UpsertMany(ctx context.Context, questions []models.Question) (int64, int64, error) {
	if len(questions) == 0 {
		return 0, 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(questions))
	for _, q := range questions {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": q.ID}).
			SetReplacement(q).
			SetUpsert(true))
	}
	res, err := r.Col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to upsert questions: %w", err)
	}
	return res.UpsertedCount, res.ModifiedCount, nil
}

func (r *QuestionRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Question, error) {
	cur, err := r.Col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	questions := []models.Question{}
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}
