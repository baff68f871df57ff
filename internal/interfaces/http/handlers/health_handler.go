package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/prometheus"
)

const readinessCheckTimeout = 5 * time.Second

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves liveness and readiness. Liveness is unconditional;
// readiness runs every registered dependency check.
type HealthHandler struct {
	checks  map[string]CheckFunc
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewHealthHandler builds the handler. metrics may be nil.
func NewHealthHandler(logger logging.Logger, metrics *prometheus.AppMetrics) *HealthHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HealthHandler{
		checks:  make(map[string]CheckFunc),
		logger:  logger.Named("health"),
		metrics: metrics,
	}
}

// Register adds a named dependency check.
func (h *HealthHandler) Register(name string, check CheckFunc) {
	h.checks[name] = check
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. Any failing dependency yields 503 with a
// per-component breakdown.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessCheckTimeout)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		err := check(ctx)
		status := 1.0
		if err != nil {
			healthy = false
			status = 0
			components[name] = err.Error()
			h.logger.Warn("readiness check failed",
				logging.String("component", name), logging.Err(err))
		} else {
			components[name] = "ok"
		}
		if h.metrics != nil {
			h.metrics.HealthCheckStatus.WithLabelValues(name).Set(status)
		}
	}

	code := http.StatusOK
	status := "ready"
	if !healthy {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}
