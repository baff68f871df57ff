package reputation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ─────────────────────────────────────────────────────────────────────────────

type memProfiles struct {
	mu       sync.Mutex
	profiles map[common.ProfileID]*profile.Profile
}

func newMemProfiles(ps ...*profile.Profile) *memProfiles {
	m := &memProfiles{profiles: make(map[common.ProfileID]*profile.Profile)}
	for _, p := range ps {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memProfiles) Upsert(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

func (m *memProfiles) GetByID(_ context.Context, id common.ProfileID) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeProfileNotFound, "not found")
	}
	return p, nil
}

func (m *memProfiles) List(_ context.Context, _ profile.ListFilter) (*common.PaginatedResult[*profile.Profile], error) {
	return &common.PaginatedResult[*profile.Profile]{}, nil
}

func (m *memProfiles) Delete(_ context.Context, id common.ProfileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
	return nil
}

type memEvaluations struct {
	mu      sync.Mutex
	records []*evaluation.Evaluation
	saveErr error
}

func (m *memEvaluations) Save(_ context.Context, e *evaluation.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, e)
	return nil
}

func (m *memEvaluations) GetByID(_ context.Context, id common.EvaluationID) (*evaluation.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.records {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New(errors.ErrCodeEvaluationNotFound, "not found")
}

func (m *memEvaluations) ListByProfile(_ context.Context, profileID common.ProfileID, q evaluation.HistoryQuery) ([]*evaluation.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*evaluation.Evaluation
	for _, e := range m.records {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memEvaluations) LatestPerProfile(_ context.Context) ([]*evaluation.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[common.ProfileID]*evaluation.Evaluation)
	for _, e := range m.records {
		if cur, ok := latest[e.ProfileID]; !ok || e.EvaluatedAt.After(cur.EvaluatedAt) {
			latest[e.ProfileID] = e
		}
	}
	out := make([]*evaluation.Evaluation, 0, len(latest))
	for _, e := range latest {
		out = append(out, e)
	}
	return out, nil
}

func (m *memEvaluations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache { return &memCache{items: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeCacheError, "miss")
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []*evaluation.Evaluation
}

func (p *capturePublisher) PublishEvaluationCompleted(_ context.Context, e *evaluation.Evaluation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type captureLeaderboard struct {
	mu      sync.Mutex
	scores  map[common.ProfileID]float64
	removed []common.ProfileID
}

func newCaptureLeaderboard() *captureLeaderboard {
	return &captureLeaderboard{scores: make(map[common.ProfileID]float64)}
}

func (l *captureLeaderboard) UpdateScore(_ context.Context, id common.ProfileID, score float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores[id] = score
	return nil
}

func (l *captureLeaderboard) Remove(_ context.Context, id common.ProfileID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removed = append(l.removed, id)
	delete(l.scores, id)
	return nil
}

func (l *captureLeaderboard) Top(_ context.Context, n int) ([]LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LeaderboardEntry, 0, n)
	for id, s := range l.scores {
		out = append(out, LeaderboardEntry{ProfileID: id, Score: s})
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func strongProfile(id common.ProfileID) *profile.Profile {
	return &profile.Profile{
		ID:                  id,
		FullName:            "Ada Example",
		Specialty:           "cardiothoracic surgery",
		Country:             "US",
		LicenseVerified:     true,
		Citations:           600,
		HIndex:              90,
		YearsActive:         50,
		Publications:        300,
		VerifiedSurgeries:   9000,
		LivesSaved:          25000,
		TechniquesInvented:  5,
		BoardCertifications: 8,
		ManualVerifications: 4,
		HasInvention:        true,
		IsPioneer:           true,
		IsLeader:            true,
		Honors:              []honor.Award{{Name: "Nobel Prize in Physiology or Medicine"}},
	}
}

type fixture struct {
	svc         Service
	profiles    *memProfiles
	evaluations *memEvaluations
	cache       *memCache
	publisher   *capturePublisher
	leaderboard *captureLeaderboard
}

func newFixture(t *testing.T, ps ...*profile.Profile) *fixture {
	t.Helper()
	f := &fixture{
		profiles:    newMemProfiles(ps...),
		evaluations: &memEvaluations{},
		cache:       newMemCache(),
		publisher:   &capturePublisher{},
		leaderboard: newCaptureLeaderboard(),
	}
	engine := scoring.MustNewEngine(scoring.DefaultEngineConfig())
	f.svc = NewService(f.profiles, f.evaluations, engine,
		f.cache, f.publisher, nil, f.leaderboard, nil, nil,
		logging.NewNopLogger(), DefaultServiceConfig())
	return f
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluate
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluate_FullFlow(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"))

	e, err := f.svc.Evaluate(context.Background(), EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)
	require.NotNil(t, e.Score)

	assert.Equal(t, scoring.TierTitan, e.EngineTier)
	assert.Equal(t, scoring.TierTitan, e.GateTier)
	assert.Equal(t, "v1", e.EngineVersion)

	assert.Equal(t, 1, f.evaluations.count())
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, e.ID, f.publisher.events[0].ID)
	assert.Equal(t, *e.Score, f.leaderboard.scores["prof-1"])
}

func TestEvaluate_CacheHitSkipsEngine(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"))
	ctx := context.Background()

	first, err := f.svc.Evaluate(ctx, EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	second, err := f.svc.Evaluate(ctx, EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// Only the first call persisted and published.
	assert.Equal(t, 1, f.evaluations.count())
	assert.Len(t, f.publisher.events, 1)
}

func TestEvaluate_SkipCacheForcesRerun(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"))
	ctx := context.Background()

	first, err := f.svc.Evaluate(ctx, EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	second, err := f.svc.Evaluate(ctx, EvaluateRequest{ProfileID: "prof-1", SkipCache: true})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, f.evaluations.count())
}

func TestEvaluate_ProfileNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Evaluate(context.Background(), EvaluateRequest{ProfileID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileNotFound))
}

func TestEvaluate_EmptyRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Evaluate(context.Background(), EvaluateRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestEvaluate_DisqualifiedLeavesLeaderboard(t *testing.T) {
	p := strongProfile("prof-1")
	p.HasRetraction = true
	f := newFixture(t, p)

	e, err := f.svc.Evaluate(context.Background(), EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	assert.True(t, e.Disqualified)
	assert.Equal(t, scoring.TierUnranked, e.EngineTier)
	assert.Contains(t, f.leaderboard.removed, common.ProfileID("prof-1"))
	assert.NotContains(t, f.leaderboard.scores, common.ProfileID("prof-1"))
}

func TestEvaluate_PersistFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"))
	f.evaluations.saveErr = errors.New(errors.ErrCodeDatabaseError, "down")

	e, err := f.svc.Evaluate(context.Background(), EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)
	assert.NotNil(t, e.Score)
}

// ─────────────────────────────────────────────────────────────────────────────
// EvaluateBatch
// ─────────────────────────────────────────────────────────────────────────────

func TestEvaluateBatch_MixedResults(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"), strongProfile("prof-2"))

	res, err := f.svc.EvaluateBatch(context.Background(),
		[]common.ProfileID{"prof-1", "ghost", "prof-2"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Evaluations, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, common.ProfileID("ghost"), res.Failed[0].ProfileID)
}

func TestEvaluateBatch_Empty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.EvaluateBatch(context.Background(), nil)
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// History / comparison
// ─────────────────────────────────────────────────────────────────────────────

func seedEvaluation(f *fixture, profileID common.ProfileID, score float64, tr scoring.Tier, at time.Time) *evaluation.Evaluation {
	e := &evaluation.Evaluation{
		ID:          common.EvaluationID(common.GenerateID("eval")),
		ProfileID:   profileID,
		Score:       &score,
		EngineTier:  tr,
		EvaluatedAt: at,
	}
	e.Breakdown.CitationScore = score * 0.3
	_ = f.evaluations.Save(context.Background(), e)
	return e
}

func TestGetHistory_NewestFirst(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedEvaluation(f, "prof-1", 60, scoring.TierMaster, base)
	seedEvaluation(f, "prof-1", 75, scoring.TierElite, base.AddDate(0, 1, 0))
	seedEvaluation(f, "prof-2", 40, scoring.TierUnranked, base)

	records, err := f.svc.GetHistory(context.Background(), "prof-1", evaluation.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 75.0, records[0].ScoreValue())
	assert.Equal(t, 60.0, records[1].ScoreValue())
}

func TestCompareEvaluations_ImprovingTrend(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedEvaluation(f, "prof-1", 60, scoring.TierMaster, base)
	seedEvaluation(f, "prof-1", 78, scoring.TierElite, base.AddDate(0, 6, 0))

	cmp, err := f.svc.CompareEvaluations(context.Background(), "prof-1")
	require.NoError(t, err)

	assert.Equal(t, "improving", cmp.Trend)
	assert.Equal(t, 18.0, cmp.ScoreDelta)
	assert.True(t, cmp.TierChanged)
	require.Len(t, cmp.Snapshots, 2)
	// Snapshots are chronological: oldest first.
	assert.True(t, cmp.Snapshots[0].EvaluatedAt.Before(cmp.Snapshots[1].EvaluatedAt))
	// citation_score moved 18 → 23.4, a 30% change.
	require.NotEmpty(t, cmp.SignificantChanges)
	assert.Equal(t, "citation_score", cmp.SignificantChanges[0].Component)
}

func TestCompareEvaluations_StableWithinThreshold(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedEvaluation(f, "prof-1", 70, scoring.TierElite, base)
	seedEvaluation(f, "prof-1", 72, scoring.TierElite, base.AddDate(0, 1, 0))

	cmp, err := f.svc.CompareEvaluations(context.Background(), "prof-1")
	require.NoError(t, err)
	assert.Equal(t, "stable", cmp.Trend)
	assert.False(t, cmp.TierChanged)
}

func TestCompareEvaluations_RequiresTwo(t *testing.T) {
	f := newFixture(t)
	seedEvaluation(f, "prof-1", 70, scoring.TierElite, time.Now())

	_, err := f.svc.CompareEvaluations(context.Background(), "prof-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEvaluationCompareError))
}

// ─────────────────────────────────────────────────────────────────────────────
// Tier distribution / export / leaderboard
// ─────────────────────────────────────────────────────────────────────────────

func TestGetTierDistribution_CountsLatestOnly(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// prof-1 moved MASTER → ELITE; only the latest counts.
	seedEvaluation(f, "prof-1", 60, scoring.TierMaster, base)
	seedEvaluation(f, "prof-1", 75, scoring.TierElite, base.AddDate(0, 1, 0))
	seedEvaluation(f, "prof-2", 92, scoring.TierTitan, base)

	td, err := f.svc.GetTierDistribution(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, td.Total)
	assert.Equal(t, 1, td.Counts[scoring.TierElite])
	assert.Equal(t, 1, td.Counts[scoring.TierTitan])
	assert.Equal(t, 0, td.Counts[scoring.TierMaster])
}

func TestExportEvaluation_JSON(t *testing.T) {
	f := newFixture(t)
	e := seedEvaluation(f, "prof-1", 75, scoring.TierElite, time.Now().UTC())

	res, err := f.svc.ExportEvaluation(context.Background(), e.ID, ExportJSON)
	require.NoError(t, err)

	assert.Equal(t, contentTypeJSON, res.ContentType)
	assert.Contains(t, string(res.Data), `"engine_tier": "ELITE"`)
}

func TestExportEvaluation_CSV(t *testing.T) {
	f := newFixture(t)
	e := seedEvaluation(f, "prof-1", 75, scoring.TierElite, time.Now().UTC())

	res, err := f.svc.ExportEvaluation(context.Background(), e.ID, ExportCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "engine_tier")
	assert.Contains(t, lines[1], "75.00")
	assert.Contains(t, lines[1], "ELITE")
}

func TestExportEvaluation_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)
	e := seedEvaluation(f, "prof-1", 75, scoring.TierElite, time.Now().UTC())

	_, err := f.svc.ExportEvaluation(context.Background(), e.ID, ExportFormat("xml"))
	assert.Error(t, err)
}

func TestGetLeaderboard_Bounds(t *testing.T) {
	f := newFixture(t, strongProfile("prof-1"))
	_, err := f.svc.Evaluate(context.Background(), EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	entries, err := f.svc.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, common.ProfileID("prof-1"), entries[0].ProfileID)
}
