package prometheus

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// AppMetrics holds the platform metric vectors.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Evaluation layer
	EvaluationsTotal        CounterVec
	EvaluationDuration      HistogramVec
	EvaluationScores        HistogramVec
	DisqualificationsTotal  CounterVec
	TierAssignmentsTotal    CounterVec
	BatchEvaluationDuration HistogramVec

	// Directory layer
	ProfileUpsertsTotal  CounterVec
	ProfileDeletesTotal  CounterVec
	LineageQueryDuration HistogramVec

	// Infrastructure layer
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	MessagesConsumed CounterVec
	SearchDuration   HistogramVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default bucket layouts.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	// Score buckets follow the tier thresholds.
	DefaultScoreBuckets = []float64{10, 25, 50, 60, 70, 80, 90, 95, 100}
)

// NewAppMetrics registers the platform metric set on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.EvaluationsTotal = collector.RegisterCounter("evaluations_total", "Completed evaluations", "engine_tier", "gate_tier")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "Single evaluation duration", DefaultHTTPDurationBuckets)
	m.EvaluationScores = collector.RegisterHistogram("evaluation_scores", "Score distribution", DefaultScoreBuckets)
	m.DisqualificationsTotal = collector.RegisterCounter("disqualifications_total", "Disqualified evaluations", "reason")
	m.TierAssignmentsTotal = collector.RegisterCounter("tier_assignments_total", "Gatekeeper tier assignments", "tier")
	m.BatchEvaluationDuration = collector.RegisterHistogram("batch_evaluation_duration_seconds", "Batch evaluation duration", []float64{.05, .1, .5, 1, 5, 10, 30, 60})

	m.ProfileUpsertsTotal = collector.RegisterCounter("profile_upserts_total", "Directory profile upserts")
	m.ProfileDeletesTotal = collector.RegisterCounter("profile_deletes_total", "Directory profile deletes")
	m.LineageQueryDuration = collector.RegisterHistogram("lineage_query_duration_seconds", "Mentorship graph query duration", DefaultDBDurationBuckets)

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessagesConsumed = collector.RegisterCounter("messages_consumed_total", "Kafka messages consumed", "topic", "status")
	m.SearchDuration = collector.RegisterHistogram("search_duration_seconds", "Directory search duration", DefaultHTTPDurationBuckets, "index")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheAccess records a hit or miss for the named cache.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Application port adapter
// ─────────────────────────────────────────────────────────────────────────────

// PortAdapter adapts the collector to the name-based metrics port the
// application services depend on. Vectors are registered lazily on first use
// with the label keys observed then; callers must use a stable label set per
// metric name.
type PortAdapter struct {
	collector MetricsCollector

	mu         sync.Mutex
	counters   map[string]CounterVec
	histograms map[string]HistogramVec
}

// NewPortAdapter wraps collector.
func NewPortAdapter(collector MetricsCollector) *PortAdapter {
	return &PortAdapter{
		collector:  collector,
		counters:   make(map[string]CounterVec),
		histograms: make(map[string]HistogramVec),
	}
}

// IncCounter increments the named counter with labels.
func (a *PortAdapter) IncCounter(name string, labels map[string]string) {
	keys := sortedKeys(labels)

	a.mu.Lock()
	vec, ok := a.counters[vecKey(name, keys)]
	if !ok {
		vec = a.collector.RegisterCounter(name, name, keys...)
		a.counters[vecKey(name, keys)] = vec
	}
	a.mu.Unlock()

	if len(labels) == 0 {
		vec.WithLabelValues().Inc()
		return
	}
	vec.With(labels).Inc()
}

// ObserveHistogram records value on the named histogram with labels.
func (a *PortAdapter) ObserveHistogram(name string, value float64, labels map[string]string) {
	keys := sortedKeys(labels)

	a.mu.Lock()
	vec, ok := a.histograms[vecKey(name, keys)]
	if !ok {
		vec = a.collector.RegisterHistogram(name, name, nil, keys...)
		a.histograms[vecKey(name, keys)] = vec
	}
	a.mu.Unlock()

	if len(labels) == 0 {
		vec.WithLabelValues().Observe(value)
		return
	}
	vec.With(labels).Observe(value)
}

func sortedKeys(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func vecKey(name string, keys []string) string {
	if len(keys) == 0 {
		return name
	}
	return name + "|" + strings.Join(keys, ",")
}
