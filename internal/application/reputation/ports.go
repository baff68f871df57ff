package reputation

import (
	"context"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Outbound ports
//
// The service depends on narrow interfaces; the infrastructure layer provides
// redis/kafka/opensearch/minio/prometheus implementations, and every port has
// a no-op fallback so the service degrades instead of failing when a backing
// system is not wired (CLI usage, tests).
// ─────────────────────────────────────────────────────────────────────────────

// Cache is a byte-level cache with TTL semantics.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher emits domain events after successful evaluations.
type EventPublisher interface {
	PublishEvaluationCompleted(ctx context.Context, e *evaluation.Evaluation) error
}

// Indexer keeps the directory search index in sync with evaluation results.
type Indexer interface {
	IndexProfileScore(ctx context.Context, p *profile.Profile, e *evaluation.Evaluation) error
}

// Leaderboard maintains the ranked score board.
type Leaderboard interface {
	UpdateScore(ctx context.Context, id common.ProfileID, score float64) error
	Remove(ctx context.Context, id common.ProfileID) error
	Top(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	ProfileID common.ProfileID `json:"profile_id"`
	Score     float64          `json:"score"`
	Rank      int              `json:"rank"`
}

// ExportStore persists export artifacts to object storage.
type ExportStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
}

// MetricsCollector records service-level metrics.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op implementations
// ─────────────────────────────────────────────────────────────────────────────

// NoopCache always misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New(errors.ErrCodeCacheError, "cache miss")
}
func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                     { return nil }

// NoopPublisher drops events.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvaluationCompleted(context.Context, *evaluation.Evaluation) error {
	return nil
}

// NoopIndexer skips index synchronization.
type NoopIndexer struct{}

func (NoopIndexer) IndexProfileScore(context.Context, *profile.Profile, *evaluation.Evaluation) error {
	return nil
}

// NoopLeaderboard keeps no board.
type NoopLeaderboard struct{}

func (NoopLeaderboard) UpdateScore(context.Context, common.ProfileID, float64) error { return nil }
func (NoopLeaderboard) Remove(context.Context, common.ProfileID) error               { return nil }
func (NoopLeaderboard) Top(context.Context, int) ([]LeaderboardEntry, error)         { return nil, nil }

// NoopExportStore returns an empty location, leaving the payload in-memory
// only.
type NoopExportStore struct{}

func (NoopExportStore) Put(context.Context, string, []byte, string) (string, error) { return "", nil }

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string)                {}
func (NoopMetrics) ObserveHistogram(string, float64, map[string]string) {}
