//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/redis"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/testutil"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// newServices wires the reputation and directory services against real
// postgres and redis backends. Search, messaging, and storage stay no-op.
func newServices(t *testing.T) (reputation.Service, directory.Service) {
	t.Helper()

	conn := startPostgres(t)
	redisClient := startRedis(t)
	r := newRepos(conn)

	engine := scoring.MustNewEngine(scoring.DefaultEngineConfig())
	log := logging.NewNopLogger()

	repSvc := reputation.NewService(
		r.Profiles,
		r.Evaluations,
		engine,
		redis.NewCache(redisClient),
		nil,
		nil,
		redis.NewLeaderboard(redisClient),
		nil,
		nil,
		log,
		reputation.DefaultServiceConfig(),
	)
	dirSvc := directory.NewService(r.Profiles, nil, nil, nil, nil, log)
	return repSvc, dirSvc
}

func TestEvaluationFlow(t *testing.T) {
	repSvc, dirSvc := newServices(t)
	ctx := context.Background()

	p := testutil.StrongProfile(testutil.WithID(uniqueID("prof")))
	require.NoError(t, dirSvc.UpsertProfile(ctx, p))

	first, err := repSvc.Evaluate(ctx, reputation.EvaluateRequest{ProfileID: p.ID})
	require.NoError(t, err)
	require.NotNil(t, first.Score)
	assert.Greater(t, *first.Score, 0.0)
	assert.False(t, first.Disqualified)
	assert.NotEmpty(t, first.EngineTier)
	assert.NotEmpty(t, first.GateTier)
	assert.Equal(t, "v1", first.EngineVersion)

	// A second evaluation without SkipCache is served from redis.
	cached, err := repSvc.Evaluate(ctx, reputation.EvaluateRequest{ProfileID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, cached.ID)

	// SkipCache forces a fresh engine run and a new history row.
	fresh, err := repSvc.Evaluate(ctx, reputation.EvaluateRequest{ProfileID: p.ID, SkipCache: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Equal(t, *first.Score, *fresh.Score)

	history, err := repSvc.GetHistory(ctx, p.ID, evaluation.HistoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, fresh.ID, history[0].ID, "history is newest first")

	entries, err := repSvc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, p.ID, entries[0].ProfileID)
	assert.Equal(t, 1, entries[0].Rank)

	dist, err := repSvc.GetTierDistribution(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, dist.Total, 1)
}

func TestEvaluationFlow_RetractionDisqualifies(t *testing.T) {
	repSvc, dirSvc := newServices(t)
	ctx := context.Background()

	p := testutil.StrongProfile(
		testutil.WithID(uniqueID("prof-retracted")),
		testutil.WithRetraction(),
	)
	require.NoError(t, dirSvc.UpsertProfile(ctx, p))

	e, err := repSvc.Evaluate(ctx, reputation.EvaluateRequest{ProfileID: p.ID})
	require.NoError(t, err)
	assert.True(t, e.Disqualified)
	assert.Equal(t, "retracted", e.Reason)
	require.NotNil(t, e.Score)
	assert.Equal(t, 0.0, *e.Score)

	// Disqualified profiles never rank.
	entries, err := repSvc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, p.ID, entry.ProfileID)
	}
}

func TestEvaluationFlow_HistoricalProfile(t *testing.T) {
	repSvc, dirSvc := newServices(t)
	ctx := context.Background()

	p := testutil.HistoricalProfile(testutil.WithID(uniqueID("prof-hist")))
	require.NoError(t, dirSvc.UpsertProfile(ctx, p))

	e, err := repSvc.Evaluate(ctx, reputation.EvaluateRequest{ProfileID: p.ID})
	require.NoError(t, err)
	// Historical subjects are exempt from license verification.
	assert.False(t, e.Disqualified)
	require.NotNil(t, e.Score)
	assert.Greater(t, *e.Score, 0.0)
}

func TestEvaluationFlow_UnknownProfile(t *testing.T) {
	repSvc, _ := newServices(t)

	_, err := repSvc.Evaluate(context.Background(), reputation.EvaluateRequest{
		ProfileID: common.ProfileID(uniqueID("missing")),
	})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestEvaluateBatch_MixedResults(t *testing.T) {
	repSvc, dirSvc := newServices(t)
	ctx := context.Background()

	strong := testutil.StrongProfile(testutil.WithID(uniqueID("prof-a")))
	modest := testutil.ModestProfile(testutil.WithID(uniqueID("prof-b")))
	require.NoError(t, dirSvc.UpsertProfile(ctx, strong))
	require.NoError(t, dirSvc.UpsertProfile(ctx, modest))

	missing := common.ProfileID(uniqueID("prof-gone"))
	result, err := repSvc.EvaluateBatch(ctx, []common.ProfileID{strong.ID, modest.ID, missing})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Evaluations, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].ProfileID)
}
