package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"practice-service/internal/models"
)

const recentTestsInStats = 5

type ResultService struct {
	Repo         ResultStore
	defaultLimit int
}

func NewResultService(repo ResultStore, defaultLimit int) *ResultService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &ResultService{Repo: repo, defaultLimit: defaultLimit}
}

// History returns the learner's results newest first. limit <= 0 uses the
// default; testType "" matches all.
func (s *ResultService) History(ctx context.Context, userID, testType string, limit int) ([]models.TestResult, error) {
	if testType != "" && !models.ValidTestType(testType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTestType, testType)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.Repo.FindByUser(ctx, userID, testType, limit)
}

func (s *ResultService) Result(ctx context.Context, userID, resultID string) (*models.TestResult, error) {
	return s.Repo.FindByIDForUser(ctx, resultID, userID)
}

func (s *ResultService) Stats(ctx context.Context, userID string) (*models.TestStats, error) {
	results, err := s.Repo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildStats(results), nil
}

// BuildStats summarizes results in any order. Recent tests are listed
// newest first.
func BuildStats(results []models.TestResult) *models.TestStats {
	stats := &models.TestStats{TotalTests: len(results), RecentTests: []models.TestSummary{}}
	if len(results) == 0 {
		return stats
	}

	results = append([]models.TestResult(nil), results...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})

	sum, passed := 0, 0
	for _, r := range results {
		sum += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		if r.Passed {
			passed++
		}
		stats.TotalTimeSpent += r.TimeSpentSeconds
	}
	n := float64(len(results))
	stats.AverageScore = int(math.Round(float64(sum) / n))
	stats.PassRate = int(math.Round(float64(passed) * 100 / n))

	for i := 0; i < len(results) && i < recentTestsInStats; i++ {
		stats.RecentTests = append(stats.RecentTests, results[i].Summary())
	}
	return stats
}
