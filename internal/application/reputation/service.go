// Package reputation orchestrates score evaluations around the pure engine:
// cache lookups, profile loading, the engine/gatekeeper pair, history
// persistence, event publication, search-index and leaderboard sync, metrics.
// All policy lives in the domain packages; this layer only sequences I/O.
package reputation

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/tier"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

const (
	defaultConcurrency  = 8
	defaultCacheTTL     = 1 * time.Hour
	defaultLeaderboardN = 10
	maxLeaderboardN     = 100

	// Score movement below this is reported as a stable trend.
	trendThreshold = 5.0
	// Component change (percent) considered significant in comparisons.
	significantChangePct = 10.0

	cacheKeyTierDist       = "reputation:tier_dist"
	exportKeyPrefix        = "exports/evaluations/"
	contentTypeJSON        = "application/json"
	contentTypeCSV         = "text/csv"
	defaultComparisonDepth = 10
)

// EvalCacheKey returns the cache key holding a profile's latest evaluation.
// Exported so re-scoring workers can invalidate it on profile deletion.
func EvalCacheKey(id common.ProfileID) string {
	return "reputation:eval:" + string(id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Requests / responses
// ─────────────────────────────────────────────────────────────────────────────

// EvaluateRequest asks for one profile evaluation.
type EvaluateRequest struct {
	ProfileID common.ProfileID `json:"profile_id"`

	// SkipCache forces a fresh engine run; re-scoring workers set it so a
	// profile update is never masked by a cached evaluation.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// Validate checks the request.
func (r *EvaluateRequest) Validate() error {
	if r.ProfileID == "" {
		return errors.InvalidParam("profile_id is required")
	}
	return nil
}

// BatchItemError describes one failed profile in a batch run.
type BatchItemError struct {
	ProfileID common.ProfileID `json:"profile_id"`
	Error     string           `json:"error"`
}

// BatchResult summarizes a batch evaluation.
type BatchResult struct {
	Evaluations []*evaluation.Evaluation `json:"evaluations"`
	Failed      []BatchItemError         `json:"failed,omitempty"`
	Total       int                      `json:"total"`
}

// Snapshot is one point in an evaluation history comparison.
type Snapshot struct {
	EvaluationID common.EvaluationID `json:"evaluation_id"`
	Score        float64             `json:"score"`
	EngineTier   scoring.Tier        `json:"engine_tier"`
	EvaluatedAt  time.Time           `json:"evaluated_at"`
}

// SignificantChange reports a component whose contribution moved by at least
// significantChangePct between the oldest and newest compared evaluations.
type SignificantChange struct {
	Component     string  `json:"component"`
	OldValue      float64 `json:"old_value"`
	NewValue      float64 `json:"new_value"`
	ChangePercent float64 `json:"change_percent"`
}

// Comparison is the trend analysis over a profile's recent evaluations.
type Comparison struct {
	ProfileID          common.ProfileID    `json:"profile_id"`
	Snapshots          []Snapshot          `json:"snapshots"`
	Trend              string              `json:"trend"`
	ScoreDelta         float64             `json:"score_delta"`
	TierChanged        bool                `json:"tier_changed"`
	SignificantChanges []SignificantChange `json:"significant_changes,omitempty"`
}

// TierDistribution is the tier breakdown over each profile's latest
// evaluation.
type TierDistribution struct {
	Total        int                  `json:"total"`
	Counts       map[scoring.Tier]int `json:"counts"`
	Disqualified int                  `json:"disqualified"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ExportResult carries the serialized artifact and, when an export store is
// wired, its object-storage location.
type ExportResult struct {
	Location    string `json:"location,omitempty"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service exposes the evaluation orchestration surface.
type Service interface {
	// Evaluate runs the full pipeline for one profile.
	Evaluate(ctx context.Context, req EvaluateRequest) (*evaluation.Evaluation, error)

	// EvaluateBatch re-evaluates many profiles with bounded concurrency.
	EvaluateBatch(ctx context.Context, ids []common.ProfileID) (*BatchResult, error)

	// GetHistory returns a profile's evaluation history, newest first.
	GetHistory(ctx context.Context, profileID common.ProfileID, q evaluation.HistoryQuery) ([]*evaluation.Evaluation, error)

	// CompareEvaluations analyses the trend over a profile's recent history.
	CompareEvaluations(ctx context.Context, profileID common.ProfileID) (*Comparison, error)

	// GetTierDistribution returns the platform-wide tier breakdown.
	GetTierDistribution(ctx context.Context) (*TierDistribution, error)

	// ExportEvaluation serializes an evaluation and stores the artifact.
	ExportEvaluation(ctx context.Context, id common.EvaluationID, format ExportFormat) (*ExportResult, error)

	// GetLeaderboard returns the top-n ranked profiles.
	GetLeaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

// ServiceConfig holds tuneable parameters.
type ServiceConfig struct {
	Concurrency int
	CacheTTL    time.Duration
}

// DefaultServiceConfig returns production defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Concurrency: defaultConcurrency,
		CacheTTL:    defaultCacheTTL,
	}
}

type service struct {
	profiles    profile.Repository
	evaluations evaluation.Repository
	engine      *scoring.Engine
	cache       Cache
	publisher   EventPublisher
	indexer     Indexer
	leaderboard Leaderboard
	exports     ExportStore
	metrics     MetricsCollector
	logger      logging.Logger
	cfg         ServiceConfig
}

// NewService constructs the evaluation orchestrator.  Nil optional ports fall
// back to no-ops; profiles, evaluations, and engine are mandatory.
func NewService(
	profiles profile.Repository,
	evaluations evaluation.Repository,
	engine *scoring.Engine,
	cache Cache,
	publisher EventPublisher,
	indexer Indexer,
	leaderboard Leaderboard,
	exports ExportStore,
	metrics MetricsCollector,
	logger logging.Logger,
	cfg ServiceConfig,
) Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if indexer == nil {
		indexer = NoopIndexer{}
	}
	if leaderboard == nil {
		leaderboard = NoopLeaderboard{}
	}
	if exports == nil {
		exports = NoopExportStore{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &service{
		profiles:    profiles,
		evaluations: evaluations,
		engine:      engine,
		cache:       cache,
		publisher:   publisher,
		indexer:     indexer,
		leaderboard: leaderboard,
		exports:     exports,
		metrics:     metrics,
		logger:      logger.Named("reputation"),
		cfg:         cfg,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluate
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Evaluate(ctx context.Context, req EvaluateRequest) (*evaluation.Evaluation, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveHistogram("reputation_evaluate_duration_seconds", time.Since(start).Seconds(), nil)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	cacheKey := EvalCacheKey(req.ProfileID)
	if !req.SkipCache {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var e evaluation.Evaluation
			if json.Unmarshal(cached, &e) == nil {
				s.metrics.IncCounter("reputation_cache_hits_total", map[string]string{"type": "evaluation"})
				return &e, nil
			}
		}
		s.metrics.IncCounter("reputation_cache_misses_total", map[string]string{"type": "evaluation"})
	}

	p, err := s.profiles.GetByID(ctx, req.ProfileID)
	if err != nil {
		s.logger.Error("failed to load profile for evaluation",
			logging.String("profile_id", string(req.ProfileID)), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeProfileNotFound,
			fmt.Sprintf("profile %s not found", req.ProfileID))
	}

	result := s.engine.CalculateScore(p.ScoreInput())
	gate := tier.AssignTier(result, p.GateFacts())

	e := evaluation.NewEvaluation(p.ID, result, gate, s.engine.Config().Version, time.Now().UTC())

	if saveErr := s.evaluations.Save(ctx, e); saveErr != nil {
		// The evaluation is still valid; history persistence is retried by the
		// next run.
		s.logger.Error("failed to persist evaluation",
			logging.String("profile_id", string(p.ID)), logging.Err(saveErr))
		s.metrics.IncCounter("reputation_persist_failures_total", nil)
	}

	if data, marshalErr := json.Marshal(e); marshalErr == nil {
		_ = s.cache.Set(ctx, cacheKey, data, s.cfg.CacheTTL)
	}
	_ = s.cache.Delete(ctx, cacheKeyTierDist)

	s.syncProjections(ctx, p, e)

	if pubErr := s.publisher.PublishEvaluationCompleted(ctx, e); pubErr != nil {
		s.logger.Warn("failed to publish evaluation event",
			logging.String("evaluation_id", string(e.ID)), logging.Err(pubErr))
		s.metrics.IncCounter("reputation_publish_failures_total", nil)
	}

	s.metrics.IncCounter("reputation_evaluations_total", map[string]string{
		"tier":         string(e.EngineTier),
		"disqualified": fmt.Sprintf("%t", e.Disqualified),
	})
	return e, nil
}

// syncProjections pushes the fresh evaluation into the leaderboard and the
// directory search index.  Both are best-effort mirrors of the history table.
func (s *service) syncProjections(ctx context.Context, p *profile.Profile, e *evaluation.Evaluation) {
	if e.Disqualified {
		if err := s.leaderboard.Remove(ctx, p.ID); err != nil {
			s.logger.Warn("failed to remove profile from leaderboard",
				logging.String("profile_id", string(p.ID)), logging.Err(err))
		}
	} else if err := s.leaderboard.UpdateScore(ctx, p.ID, e.ScoreValue()); err != nil {
		s.logger.Warn("failed to update leaderboard",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
	}

	if err := s.indexer.IndexProfileScore(ctx, p, e); err != nil {
		s.logger.Warn("failed to sync search index",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
		s.metrics.IncCounter("reputation_index_failures_total", nil)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// EvaluateBatch
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) EvaluateBatch(ctx context.Context, ids []common.ProfileID) (*BatchResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveHistogram("reputation_batch_duration_seconds", time.Since(start).Seconds(), nil)
	}()

	if len(ids) == 0 {
		return nil, errors.InvalidParam("at least one profile_id is required")
	}

	type slot struct {
		eval *evaluation.Evaluation
		err  error
	}
	slots := make([]slot, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			e, err := s.Evaluate(gctx, EvaluateRequest{ProfileID: id, SkipCache: true})
			slots[i] = slot{eval: e, err: err}
			// Individual failures are reported per item, not as a batch error.
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Total: len(ids)}
	for i, sl := range slots {
		if sl.err != nil {
			result.Failed = append(result.Failed, BatchItemError{
				ProfileID: ids[i],
				Error:     sl.err.Error(),
			})
			continue
		}
		result.Evaluations = append(result.Evaluations, sl.eval)
	}
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetHistory / CompareEvaluations
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) GetHistory(ctx context.Context, profileID common.ProfileID, q evaluation.HistoryQuery) ([]*evaluation.Evaluation, error) {
	if profileID == "" {
		return nil, errors.InvalidParam("profile_id is required")
	}
	if q.Limit <= 0 {
		q.Limit = defaultComparisonDepth
	}

	records, err := s.evaluations.ListByProfile(ctx, profileID, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "fetch evaluation history")
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EvaluatedAt.After(records[j].EvaluatedAt)
	})
	return records, nil
}

func (s *service) CompareEvaluations(ctx context.Context, profileID common.ProfileID) (*Comparison, error) {
	records, err := s.GetHistory(ctx, profileID, evaluation.HistoryQuery{Limit: defaultComparisonDepth})
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New(errors.ErrCodeEvaluationCompareError,
			"at least two evaluations are required for comparison")
	}

	// Chronological for trend analysis.
	sort.Slice(records, func(i, j int) bool {
		return records[i].EvaluatedAt.Before(records[j].EvaluatedAt)
	})

	cmp := &Comparison{ProfileID: profileID}
	for _, r := range records {
		cmp.Snapshots = append(cmp.Snapshots, Snapshot{
			EvaluationID: r.ID,
			Score:        r.ScoreValue(),
			EngineTier:   r.EngineTier,
			EvaluatedAt:  r.EvaluatedAt,
		})
	}

	first, last := records[0], records[len(records)-1]
	cmp.ScoreDelta = round2(last.ScoreValue() - first.ScoreValue())
	switch {
	case cmp.ScoreDelta > trendThreshold:
		cmp.Trend = "improving"
	case cmp.ScoreDelta < -trendThreshold:
		cmp.Trend = "declining"
	default:
		cmp.Trend = "stable"
	}
	cmp.TierChanged = first.EngineTier != last.EngineTier

	oldComponents := breakdownComponents(first.Breakdown)
	newComponents := breakdownComponents(last.Breakdown)
	for _, name := range componentOrder {
		oldVal, newVal := oldComponents[name], newComponents[name]
		if oldVal == 0 {
			continue
		}
		changePct := math.Abs((newVal - oldVal) / oldVal * 100)
		if changePct >= significantChangePct {
			cmp.SignificantChanges = append(cmp.SignificantChanges, SignificantChange{
				Component:     name,
				OldValue:      oldVal,
				NewValue:      newVal,
				ChangePercent: round2(changePct),
			})
		}
	}
	return cmp, nil
}

// componentOrder fixes a deterministic reporting order for breakdown
// components.
var componentOrder = []string{
	"citation_score", "years_score", "technique_score", "honor_score",
	"pioneer_bonus", "leadership_bonus", "pillar_average",
}

func breakdownComponents(b scoring.Breakdown) map[string]float64 {
	return map[string]float64{
		"citation_score":   b.CitationScore,
		"years_score":      b.YearsScore,
		"technique_score":  b.TechniqueScore,
		"honor_score":      b.HonorScore,
		"pioneer_bonus":    b.PioneerBonus,
		"leadership_bonus": b.LeadershipBonus,
		"pillar_average":   b.PillarAverage,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetTierDistribution
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) GetTierDistribution(ctx context.Context) (*TierDistribution, error) {
	if cached, err := s.cache.Get(ctx, cacheKeyTierDist); err == nil && len(cached) > 0 {
		var td TierDistribution
		if json.Unmarshal(cached, &td) == nil {
			return &td, nil
		}
	}

	latest, err := s.evaluations.LatestPerProfile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "fetch latest evaluations")
	}

	td := &TierDistribution{
		Counts: map[scoring.Tier]int{
			scoring.TierTitan:    0,
			scoring.TierElite:    0,
			scoring.TierMaster:   0,
			scoring.TierUnranked: 0,
		},
		GeneratedAt: time.Now().UTC(),
	}
	for _, e := range latest {
		td.Total++
		td.Counts[e.EngineTier]++
		if e.Disqualified {
			td.Disqualified++
		}
	}

	if data, marshalErr := json.Marshal(td); marshalErr == nil {
		_ = s.cache.Set(ctx, cacheKeyTierDist, data, s.cfg.CacheTTL)
	}
	return td, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ExportEvaluation
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) ExportEvaluation(ctx context.Context, id common.EvaluationID, format ExportFormat) (*ExportResult, error) {
	if id == "" {
		return nil, errors.InvalidParam("evaluation_id is required")
	}

	e, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEvaluationNotFound,
			fmt.Sprintf("evaluation %s not found", id))
	}

	var (
		data        []byte
		contentType string
		ext         string
	)
	switch format {
	case ExportJSON:
		data, err = json.MarshalIndent(e, "", "  ")
		contentType, ext = contentTypeJSON, "json"
	case ExportCSV:
		data, err = exportCSV(e)
		contentType, ext = contentTypeCSV, "csv"
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported export format: %s", format))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEvaluationExportError, "serialize evaluation")
	}

	key := exportKeyPrefix + string(e.ID) + "." + ext
	location, putErr := s.exports.Put(ctx, key, data, contentType)
	if putErr != nil {
		s.logger.Warn("failed to store export artifact",
			logging.String("evaluation_id", string(e.ID)), logging.Err(putErr))
		s.metrics.IncCounter("reputation_export_store_failures_total", nil)
	}

	s.metrics.IncCounter("reputation_exports_total", map[string]string{"format": string(format)})
	return &ExportResult{Location: location, ContentType: contentType, Data: data}, nil
}

func exportCSV(e *evaluation.Evaluation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "profile_id", "score", "engine_tier", "gate_tier",
		"disqualified", "reason", "floor_protected", "engine_version", "evaluated_at",
	}
	header = append(header, componentOrder...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	score := ""
	if e.Score != nil {
		score = fmt.Sprintf("%.2f", *e.Score)
	}
	row := []string{
		string(e.ID), string(e.ProfileID), score,
		string(e.EngineTier), string(e.GateTier),
		fmt.Sprintf("%t", e.Disqualified), e.Reason,
		fmt.Sprintf("%t", e.FloorProtected), e.EngineVersion,
		e.EvaluatedAt.Format(time.RFC3339),
	}
	components := breakdownComponents(e.Breakdown)
	for _, name := range componentOrder {
		row = append(row, fmt.Sprintf("%.2f", components[name]))
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetLeaderboard
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) GetLeaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = defaultLeaderboardN
	}
	if n > maxLeaderboardN {
		n = maxLeaderboardN
	}
	entries, err := s.leaderboard.Top(ctx, n)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "fetch leaderboard")
	}
	return entries, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
