package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

type stubService struct {
	evaluateResult *evaluation.Evaluation
	evaluateErr    error
	batchResult    *reputation.BatchResult
	distribution   *reputation.TierDistribution
	leaderboard    []reputation.LeaderboardEntry

	lastRequest reputation.EvaluateRequest
}

func (s *stubService) Evaluate(_ context.Context, req reputation.EvaluateRequest) (*evaluation.Evaluation, error) {
	s.lastRequest = req
	return s.evaluateResult, s.evaluateErr
}

func (s *stubService) EvaluateBatch(context.Context, []common.ProfileID) (*reputation.BatchResult, error) {
	return s.batchResult, nil
}

func (s *stubService) GetHistory(context.Context, common.ProfileID, evaluation.HistoryQuery) ([]*evaluation.Evaluation, error) {
	return nil, nil
}

func (s *stubService) CompareEvaluations(context.Context, common.ProfileID) (*reputation.Comparison, error) {
	return nil, nil
}

func (s *stubService) GetTierDistribution(context.Context) (*reputation.TierDistribution, error) {
	return s.distribution, nil
}

func (s *stubService) ExportEvaluation(context.Context, common.EvaluationID, reputation.ExportFormat) (*reputation.ExportResult, error) {
	return nil, nil
}

func (s *stubService) GetLeaderboard(context.Context, int) ([]reputation.LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func TestEvaluate_MapsRequestAndResponse(t *testing.T) {
	score := 88.0
	svc := &stubService{evaluateResult: &evaluation.Evaluation{ID: "eval-1", ProfileID: "prof-1", Score: &score}}
	server := NewEvaluationServiceServer(svc, nil)

	resp, err := server.Evaluate(context.Background(), &EvaluateRequest{ProfileID: "prof-1", SkipCache: true})
	require.NoError(t, err)

	assert.Equal(t, common.ProfileID("prof-1"), svc.lastRequest.ProfileID)
	assert.True(t, svc.lastRequest.SkipCache)
	assert.Equal(t, common.EvaluationID("eval-1"), resp.Evaluation.ID)
}

func TestEvaluate_NotFoundMapsToStatus(t *testing.T) {
	svc := &stubService{evaluateErr: appErrors.NotFound("profile ghost not found")}
	server := NewEvaluationServiceServer(svc, nil)

	_, err := server.Evaluate(context.Background(), &EvaluateRequest{ProfileID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestEvaluate_InternalErrorIsMasked(t *testing.T) {
	svc := &stubService{evaluateErr: appErrors.Internal("pgx: connection refused")}
	server := NewEvaluationServiceServer(svc, nil)

	_, err := server.Evaluate(context.Background(), &EvaluateRequest{ProfileID: "prof-1"})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, err.Error(), "pgx")
}

func TestEvaluateBatch_ConvertsIDs(t *testing.T) {
	svc := &stubService{batchResult: &reputation.BatchResult{Total: 2}}
	server := NewEvaluationServiceServer(svc, nil)

	resp, err := server.EvaluateBatch(context.Background(), &EvaluateBatchRequest{ProfileIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.Total)
}

func TestClassifyHonors(t *testing.T) {
	server := NewEvaluationServiceServer(&stubService{}, nil)

	resp, err := server.ClassifyHonors(context.Background(), &ClassifyHonorsRequest{
		Awards: []honor.Award{{Name: "Nobel Prize in Physiology or Medicine"}},
	})
	require.NoError(t, err)
	assert.Greater(t, resp.Result.TotalPoints, 0.0)
	assert.True(t, resp.Result.FloorProtection)
}

func TestRequestValidation(t *testing.T) {
	assert.Error(t, (&EvaluateRequest{}).Validate())
	assert.NoError(t, (&EvaluateRequest{ProfileID: "prof-1"}).Validate())
	assert.Error(t, (&EvaluateBatchRequest{}).Validate())
	assert.Error(t, (&ClassifyHonorsRequest{}).Validate())
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := jsonCodec{}

	data, err := codec.Marshal(&EvaluateRequest{ProfileID: "prof-1"})
	require.NoError(t, err)

	var decoded EvaluateRequest
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, "prof-1", decoded.ProfileID)
	assert.Equal(t, JSONCodecName, codec.Name())
}

func TestServiceDesc_MethodSet(t *testing.T) {
	assert.Equal(t, evaluationServiceName, EvaluationServiceDesc.ServiceName)
	assert.Len(t, EvaluationServiceDesc.Methods, 5)
}
