package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

type recordedMetric struct {
	name   string
	labels map[string]string
}

type fakeMetrics struct {
	counters   []recordedMetric
	histograms []recordedMetric
}

func (f *fakeMetrics) IncCounter(name string, labels map[string]string) {
	f.counters = append(f.counters, recordedMetric{name: name, labels: labels})
}

func (f *fakeMetrics) ObserveHistogram(name string, _ float64, labels map[string]string) {
	f.histograms = append(f.histograms, recordedMetric{name: name, labels: labels})
}

type validatingRequest struct {
	err error
}

func (r *validatingRequest) Validate() error { return r.err }

func unaryInfo(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}

func TestServer_StartAndStop(t *testing.T) {
	srv, err := NewServer(config.GRPCConfig{Port: 0})
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("grpc server did not stop")
	}
}

func TestServer_StopBeforeStartIsNoop(t *testing.T) {
	srv, err := NewServer(config.GRPCConfig{Port: 0})
	require.NoError(t, err)

	assert.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
	srv.GRPCServer().Stop()
}

func TestRecoveryInterceptor_TurnsPanicIntoInternal(t *testing.T) {
	interceptor := recoveryUnaryInterceptor(logging.NewNopLogger())

	_, err := interceptor(context.Background(), nil, unaryInfo("/medrank.v1.EvaluationService/Evaluate"),
		func(context.Context, interface{}) (interface{}, error) {
			panic("boom")
		})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestValidationInterceptor(t *testing.T) {
	interceptor := validationUnaryInterceptor()
	info := unaryInfo("/medrank.v1.EvaluationService/Evaluate")
	pass := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }

	resp, err := interceptor(context.Background(), &validatingRequest{}, info, pass)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = interceptor(context.Background(), &validatingRequest{err: appErrors.InvalidParam("profile_id is required")}, info, pass)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMetricsInterceptor_RecordsServiceMethodCode(t *testing.T) {
	m := &fakeMetrics{}
	interceptor := metricsUnaryInterceptor(m)

	_, err := interceptor(context.Background(), nil, unaryInfo("/medrank.v1.EvaluationService/Evaluate"),
		func(context.Context, interface{}) (interface{}, error) {
			return nil, status.Error(codes.NotFound, "missing")
		})
	require.Error(t, err)

	require.Len(t, m.counters, 1)
	assert.Equal(t, "grpc_requests_total", m.counters[0].name)
	assert.Equal(t, "medrank.v1.EvaluationService", m.counters[0].labels["service"])
	assert.Equal(t, "Evaluate", m.counters[0].labels["method"])
	assert.Equal(t, "NotFound", m.counters[0].labels["code"])
	require.Len(t, m.histograms, 1)
	assert.Equal(t, "grpc_request_duration_seconds", m.histograms[0].name)
}

func TestMetricsInterceptor_SkipsHealthChecks(t *testing.T) {
	m := &fakeMetrics{}
	interceptor := metricsUnaryInterceptor(m)

	_, err := interceptor(context.Background(), nil, unaryInfo("/grpc.health.v1.Health/Check"),
		func(context.Context, interface{}) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	assert.Empty(t, m.counters)
}

func TestChainUnaryInterceptors_Order(t *testing.T) {
	var order []string
	tag := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	chain := chainUnaryInterceptors(tag("outer"), tag("inner"))
	_, err := chain(context.Background(), nil, unaryInfo("/svc/Method"),
		func(context.Context, interface{}) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestSplitMethodName(t *testing.T) {
	service, method := splitMethodName("/medrank.v1.EvaluationService/Evaluate")
	assert.Equal(t, "medrank.v1.EvaluationService", service)
	assert.Equal(t, "Evaluate", method)

	service, method = splitMethodName("garbage")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "garbage", method)
}

func TestLoggingInterceptor_PassesErrorThrough(t *testing.T) {
	interceptor := loggingUnaryInterceptor(logging.NewNopLogger())
	sentinel := errors.New("downstream failed")

	_, err := interceptor(context.Background(), nil, unaryInfo("/svc/Method"),
		func(context.Context, interface{}) (interface{}, error) { return nil, sentinel })
	assert.ErrorIs(t, err, sentinel)
}
