package services

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// evaluationServiceName is the fully-qualified gRPC service name.
const evaluationServiceName = "medrank.v1.EvaluationService"

// ─────────────────────────────────────────────────────────────────────────────
// Messages
// ─────────────────────────────────────────────────────────────────────────────

// EvaluateRequest asks for one profile evaluation.
type EvaluateRequest struct {
	ProfileID string `json:"profile_id"`
	SkipCache bool   `json:"skip_cache,omitempty"`
}

// Validate implements the validation interceptor contract.
func (r *EvaluateRequest) Validate() error {
	if r.ProfileID == "" {
		return appErrors.InvalidParam("profile_id is required")
	}
	return nil
}

// EvaluateResponse carries the completed evaluation.
type EvaluateResponse struct {
	Evaluation *evaluation.Evaluation `json:"evaluation"`
}

// EvaluateBatchRequest asks for many profile evaluations.
type EvaluateBatchRequest struct {
	ProfileIDs []string `json:"profile_ids"`
}

// Validate implements the validation interceptor contract.
func (r *EvaluateBatchRequest) Validate() error {
	if len(r.ProfileIDs) == 0 {
		return appErrors.InvalidParam("at least one profile_id is required")
	}
	return nil
}

// EvaluateBatchResponse carries the per-profile outcomes.
type EvaluateBatchResponse struct {
	Result *reputation.BatchResult `json:"result"`
}

// TierDistributionRequest has no parameters.
type TierDistributionRequest struct{}

// TierDistributionResponse carries the platform-wide tier breakdown.
type TierDistributionResponse struct {
	Distribution *reputation.TierDistribution `json:"distribution"`
}

// LeaderboardRequest asks for the top-n ranked profiles.
type LeaderboardRequest struct {
	N int `json:"n,omitempty"`
}

// LeaderboardResponse carries ranked entries.
type LeaderboardResponse struct {
	Entries []reputation.LeaderboardEntry `json:"entries"`
}

// ClassifyHonorsRequest submits an award list for classification.
type ClassifyHonorsRequest struct {
	Awards []honor.Award `json:"awards"`
}

// Validate implements the validation interceptor contract.
func (r *ClassifyHonorsRequest) Validate() error {
	if len(r.Awards) == 0 {
		return appErrors.InvalidParam("at least one award is required")
	}
	return nil
}

// ClassifyHonorsResponse carries the aggregated bonus result.
type ClassifyHonorsResponse struct {
	Result honor.BonusResult `json:"result"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Server
// ─────────────────────────────────────────────────────────────────────────────

// EvaluationServiceServer serves the scoring surface over gRPC.
type EvaluationServiceServer struct {
	service reputation.Service
	logger  logging.Logger
}

// NewEvaluationServiceServer builds the service implementation.
func NewEvaluationServiceServer(service reputation.Service, log logging.Logger) *EvaluationServiceServer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EvaluationServiceServer{service: service, logger: log.Named("grpc.evaluation")}
}

// Evaluate runs the full pipeline for one profile.
func (s *EvaluationServiceServer) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	result, err := s.service.Evaluate(ctx, reputation.EvaluateRequest{
		ProfileID: common.ProfileID(req.ProfileID),
		SkipCache: req.SkipCache,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &EvaluateResponse{Evaluation: result}, nil
}

// EvaluateBatch re-evaluates many profiles.
func (s *EvaluationServiceServer) EvaluateBatch(ctx context.Context, req *EvaluateBatchRequest) (*EvaluateBatchResponse, error) {
	ids := make([]common.ProfileID, len(req.ProfileIDs))
	for i, id := range req.ProfileIDs {
		ids[i] = common.ProfileID(id)
	}

	result, err := s.service.EvaluateBatch(ctx, ids)
	if err != nil {
		return nil, mapError(err)
	}
	return &EvaluateBatchResponse{Result: result}, nil
}

// GetTierDistribution returns the platform-wide tier breakdown.
func (s *EvaluationServiceServer) GetTierDistribution(ctx context.Context, _ *TierDistributionRequest) (*TierDistributionResponse, error) {
	td, err := s.service.GetTierDistribution(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return &TierDistributionResponse{Distribution: td}, nil
}

// GetLeaderboard returns the top-n ranked profiles.
func (s *EvaluationServiceServer) GetLeaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error) {
	entries, err := s.service.GetLeaderboard(ctx, req.N)
	if err != nil {
		return nil, mapError(err)
	}
	return &LeaderboardResponse{Entries: entries}, nil
}

// ClassifyHonors classifies an award list without touching any profile.
func (s *EvaluationServiceServer) ClassifyHonors(_ context.Context, req *ClassifyHonorsRequest) (*ClassifyHonorsResponse, error) {
	return &ClassifyHonorsResponse{Result: honor.CalculateBonus(req.Awards)}, nil
}

// mapError translates application errors onto gRPC status codes.
func mapError(err error) error {
	switch {
	case appErrors.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case appErrors.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case appErrors.IsConflict(err):
		return status.Error(codes.Aborted, err.Error())
	case appErrors.IsCode(err, appErrors.ErrCodeNotImplemented):
		return status.Error(codes.Unimplemented, err.Error())
	case appErrors.IsCode(err, appErrors.ErrCodeServiceUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Service descriptor
// ─────────────────────────────────────────────────────────────────────────────

// EvaluationServiceHandler is the method set the descriptor binds to.
type EvaluationServiceHandler interface {
	Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error)
	EvaluateBatch(ctx context.Context, req *EvaluateBatchRequest) (*EvaluateBatchResponse, error)
	GetTierDistribution(ctx context.Context, req *TierDistributionRequest) (*TierDistributionResponse, error)
	GetLeaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error)
	ClassifyHonors(ctx context.Context, req *ClassifyHonorsRequest) (*ClassifyHonorsResponse, error)
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EvaluateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServiceHandler).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + evaluationServiceName + "/Evaluate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluationServiceHandler).Evaluate(ctx, req.(*EvaluateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateBatchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EvaluateBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServiceHandler).EvaluateBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + evaluationServiceName + "/EvaluateBatch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluationServiceHandler).EvaluateBatch(ctx, req.(*EvaluateBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func tierDistributionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(TierDistributionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServiceHandler).GetTierDistribution(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + evaluationServiceName + "/GetTierDistribution"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluationServiceHandler).GetTierDistribution(ctx, req.(*TierDistributionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func leaderboardHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LeaderboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServiceHandler).GetLeaderboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + evaluationServiceName + "/GetLeaderboard"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluationServiceHandler).GetLeaderboard(ctx, req.(*LeaderboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func classifyHonorsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ClassifyHonorsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluationServiceHandler).ClassifyHonors(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + evaluationServiceName + "/ClassifyHonors"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluationServiceHandler).ClassifyHonors(ctx, req.(*ClassifyHonorsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// EvaluationServiceDesc is the hand-rolled service descriptor; messages ride
// the JSON codec rather than protobuf.
var EvaluationServiceDesc = grpc.ServiceDesc{
	ServiceName: evaluationServiceName,
	HandlerType: (*EvaluationServiceHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "EvaluateBatch", Handler: evaluateBatchHandler},
		{MethodName: "GetTierDistribution", Handler: tierDistributionHandler},
		{MethodName: "GetLeaderboard", Handler: leaderboardHandler},
		{MethodName: "ClassifyHonors", Handler: classifyHonorsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medrank/v1/evaluation_service",
}
