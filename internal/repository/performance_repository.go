package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"practice-service/internal/metrics"
	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrLedgerConflict is returned when a record kept changing underneath an
// upsert for every allowed attempt.
var ErrLedgerConflict = errors.New("performance record update conflict")

// errVersionMismatch means another writer got there first.
var errVersionMismatch = errors.New("performance record version mismatch")

// recordStore is the narrow persistence surface the upsert loop needs.
type recordStore interface {
	// find returns nil, nil when no record exists.
	find(ctx context.Context, learnerID, questionID string) (*models.PerformanceRecord, error)
	// insert returns errVersionMismatch when the key already exists.
	insert(ctx context.Context, record *models.PerformanceRecord) error
	// replace returns errVersionMismatch unless the stored version is expected.
	replace(ctx context.Context, record *models.PerformanceRecord, expected int64) error
}

type PerformanceRepository struct {
	Col         *mongo.Collection
	store       recordStore
	maxAttempts int
	now         func() time.Time
}

func NewPerformanceRepository(db *mongo.Database, maxAttempts int) *PerformanceRepository {
	col := db.Collection("question_performance")
	return newPerformanceRepository(col, &mongoRecordStore{col: col}, maxAttempts)
}

func newPerformanceRepository(col *mongo.Collection, store recordStore, maxAttempts int) *PerformanceRepository {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &PerformanceRepository{
		Col:         col,
		store:       store,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// InitializeIndexes creates MongoDB indexes for the ledger
func (r *PerformanceRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "learner_id", Value: 1},
				{Key: "question_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "learner_id", Value: 1},
				{Key: "weight", Value: -1},
			},
		},
	}

	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create performance indexes: %w", err)
	}
	return nil
}

// GetRecords returns every record the learner has.
func (r *PerformanceRepository) GetRecords(ctx context.Context, learnerID string) ([]models.PerformanceRecord, error) {
	cur, err := r.Col.Find(ctx, bson.M{"learner_id": learnerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	records := []models.PerformanceRecord{}
	for cur.Next(ctx) {
		var rec models.PerformanceRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, cur.Err()
}

// UpsertRecord reads the record (or starts a fresh one), applies mutate and
// writes it back guarded by its version. A lost race re-reads and retries.
func (r *PerformanceRepository) UpsertRecord(ctx context.Context, learnerID, questionID string, mutate models.RecordMutation) (*models.PerformanceRecord, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := r.store.find(ctx, learnerID, questionID)
		if err != nil {
			metrics.LedgerUpserts.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to load performance record: %w", err)
		}

		now := r.now()
		if current == nil {
			rec := models.NewPerformanceRecord(learnerID, questionID)
			rec.ID = primitive.NewObjectID()
			rec.CreatedAt = now
			mutate(&rec)
			rec.Version = 1
			rec.UpdatedAt = now

			err = r.store.insert(ctx, &rec)
			if err == nil {
				metrics.LedgerUpserts.WithLabelValues("inserted").Inc()
				return &rec, nil
			}
		} else {
			rec := *current
			expected := rec.Version
			mutate(&rec)
			rec.Version = expected + 1
			rec.UpdatedAt = now

			err = r.store.replace(ctx, &rec, expected)
			if err == nil {
				metrics.LedgerUpserts.WithLabelValues("updated").Inc()
				return &rec, nil
			}
		}

		if !errors.Is(err, errVersionMismatch) {
			metrics.LedgerUpserts.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to save performance record: %w", err)
		}
		if attempt < r.maxAttempts {
			metrics.LedgerRetries.Inc()
			log.Printf("Version conflict on %s/%s, retrying (attempt %d/%d)", learnerID, questionID, attempt, r.maxAttempts)
		}
	}

	metrics.LedgerUpserts.WithLabelValues("conflict").Inc()
	return nil, fmt.Errorf("%w: %s/%s after %d attempts", ErrLedgerConflict, learnerID, questionID, r.maxAttempts)
}

type mongoRecordStore struct {
	col *mongo.Collection
}

func (s *mongoRecordStore) find(ctx context.Context, learnerID, questionID string) (*models.PerformanceRecord, error) {
	var rec models.PerformanceRecord
	err := s.col.FindOne(ctx, bson.M{"learner_id": learnerID, "question_id": questionID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *mongoRecordStore) insert(ctx context.Context, record *models.PerformanceRecord) error {
	_, err := s.col.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return errVersionMismatch
	}
	return err
}

func (s *mongoRecordStore) replace(ctx context.Context, record *models.PerformanceRecord, expected int64) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": record.ID, "version": expected}, record)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errVersionMismatch
	}
	return nil
}
