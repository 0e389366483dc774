package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"practice-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	questions []models.Question
	listCalls int
	catCalls  int
	err       error
}

func (s *countingSource) ListActiveQuestions(_ context.Context, category string) ([]models.Question, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Question
	for _, q := range s.questions {
		if category == "" || q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *countingSource) FindByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	return s.questions[:1], nil
}

func (s *countingSource) Categories(_ context.Context) ([]string, error) {
	s.catCalls++
	return []string{"signs", "signals"}, nil
}

type mapBackend struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
	failSet error
}

func newMapBackend() *mapBackend {
	return &mapBackend{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (b *mapBackend) get(_ context.Context, key string) ([]byte, error) {
	if b.failGet != nil {
		return nil, b.failGet
	}
	v, ok := b.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (b *mapBackend) set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if b.failSet != nil {
		return b.failSet
	}
	b.data[key] = value
	b.ttls[key] = ttl
	return nil
}

func (b *mapBackend) deletePrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			delete(b.data, k)
			n++
		}
	}
	return n, nil
}

func sampleSource() *countingSource {
	return &countingSource{questions: []models.Question{
		{ID: "ch2-001", Category: "signs", Options: []string{"a", "b"}, CorrectAnswer: "a", IsActive: true},
		{ID: "ch3-001", Category: "signals", Options: []string{"a", "b"}, CorrectAnswer: "b", IsActive: true},
	}}
}

func TestCatalogCacheReadThrough(t *testing.T) {
	source := sampleSource()
	backend := newMapBackend()
	cache := &CatalogCache{source: source, backend: backend, ttl: time.Minute}
	ctx := context.Background()

	first, err := cache.ListActiveQuestions(ctx, "signs")
	require.NoError(t, err)
	second, err := cache.ListActiveQuestions(ctx, "signs")
	require.NoError(t, err)

	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, "a", second[0].CorrectAnswer, "cached entries keep the answer key for scoring")
	assert.Equal(t, time.Minute, backend.ttls[catalogKeyPrefix+"active:signs"])
}

func TestCatalogCacheKeysPerCategory(t *testing.T) {
	source := sampleSource()
	cache := &CatalogCache{source: source, backend: newMapBackend(), ttl: time.Minute}
	ctx := context.Background()

	all, err := cache.ListActiveQuestions(ctx, "")
	require.NoError(t, err)
	signs, err := cache.ListActiveQuestions(ctx, "signs")
	require.NoError(t, err)

	assert.Len(t, all, 2)
	assert.Len(t, signs, 1)
	assert.Equal(t, 2, source.listCalls)
}

func TestCatalogCacheFallsThroughOnBackendError(t *testing.T) {
	source := sampleSource()
	backend := newMapBackend()
	backend.failGet = errors.New("dial tcp: connection refused")
	backend.failSet = backend.failGet
	cache := &CatalogCache{source: source, backend: backend, ttl: time.Minute}

	for i := 0; i < 2; i++ {
		questions, err := cache.ListActiveQuestions(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, questions, 2)
	}
	assert.Equal(t, 2, source.listCalls)
}

func TestCatalogCacheDoesNotCacheSourceErrors(t *testing.T) {
	source := sampleSource()
	source.err = errors.New("mongo down")
	backend := newMapBackend()
	cache := &CatalogCache{source: source, backend: backend, ttl: time.Minute}

	_, err := cache.ListActiveQuestions(context.Background(), "")
	assert.Error(t, err)
	assert.Empty(t, backend.data)
}

func TestCatalogCacheDiscardsCorruptEntry(t *testing.T) {
	source := sampleSource()
	backend := newMapBackend()
	backend.data[catalogKeyPrefix+"active:signs"] = []byte("{not json")
	cache := &CatalogCache{source: source, backend: backend, ttl: time.Minute}

	questions, err := cache.ListActiveQuestions(context.Background(), "signs")
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, 1, source.listCalls)
}

func TestCatalogCacheInvalidate(t *testing.T) {
	source := sampleSource()
	backend := newMapBackend()
	backend.data["other:key"] = []byte("1")
	cache := &CatalogCache{source: source, backend: backend, ttl: time.Minute}
	ctx := context.Background()

	_, _ = cache.ListActiveQuestions(ctx, "")
	_, _ = cache.Categories(ctx)
	require.NoError(t, cache.Invalidate(ctx))
	_, _ = cache.ListActiveQuestions(ctx, "")
	_, _ = cache.Categories(ctx)

	assert.Equal(t, 2, source.listCalls)
	assert.Equal(t, 2, source.catCalls)
	assert.Contains(t, backend.data, "other:key")
}
