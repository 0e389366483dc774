package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Practice sets served, by outcome: success/empty/no_questions/error
	Selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_selections_total",
			Help: "Total number of practice set selections",
		},
		[]string{"status"},
	)

	// Picks made by the unweighted backfill rather than the weighted draw
	BackfilledPicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_selection_backfilled_total",
			Help: "Questions picked by the unweighted backfill",
		},
	)

	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "practice_selection_duration_seconds",
			Help:    "Time spent building a practice set",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Submissions scored, by test type and pass/fail
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_submissions_total",
			Help: "Total number of scored test submissions",
		},
		[]string{"test_type", "passed"},
	)

	UnknownQuestionAnswers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_unknown_question_answers_total",
			Help: "Submitted answers dropped because the question id is not in the catalog",
		},
	)

	// Ledger upserts by outcome: inserted/updated/conflict/error
	LedgerUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_ledger_upserts_total",
			Help: "Performance ledger upserts",
		},
		[]string{"outcome"},
	)

	LedgerRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_ledger_conflict_retries_total",
			Help: "Optimistic upsert attempts retried after a version conflict",
		},
	)

	// Catalog cache lookups: hit/miss/error
	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_catalog_cache_total",
			Help: "Catalog cache lookups",
		},
		[]string{"result"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
