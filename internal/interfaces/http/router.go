// Package http assembles the gin route tree and the HTTP server around the
// reputation and directory services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/handlers"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates handler and middleware dependencies for the route
// tree. Nil handlers skip their route group; nil middleware pieces are
// omitted from the chain.
type RouterConfig struct {
	EvaluationHandler *handlers.EvaluationHandler
	ProfileHandler    *handlers.ProfileHandler
	HonorHandler      *handlers.HonorHandler
	HealthHandler     *handlers.HealthHandler

	Logger      logging.Logger
	AppMetrics  *prometheus.AppMetrics
	Metrics     http.Handler
	RateLimiter middleware.RateLimiter

	Mode string // gin mode: "debug" | "release" | "test"
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.AppMetrics != nil {
		r.Use(middleware.Metrics(cfg.AppMetrics))
	}
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api/v1")
	registerEvaluationRoutes(api, cfg.EvaluationHandler)
	registerProfileRoutes(api, cfg.ProfileHandler, cfg.EvaluationHandler)
	registerHonorRoutes(api, cfg.HonorHandler)

	return r
}

func registerEvaluationRoutes(api *gin.RouterGroup, h *handlers.EvaluationHandler) {
	if h == nil {
		return
	}
	api.POST("/evaluations", h.Evaluate)
	api.POST("/evaluations/batch", h.EvaluateBatch)
	api.GET("/evaluations/:id/export", h.Export)
	api.GET("/tiers/distribution", h.TierDistribution)
	api.GET("/leaderboard", h.Leaderboard)
}

func registerProfileRoutes(api *gin.RouterGroup, h *handlers.ProfileHandler, eh *handlers.EvaluationHandler) {
	if h == nil {
		return
	}
	profiles := api.Group("/profiles")
	profiles.POST("", h.Create)
	profiles.GET("", h.List)
	profiles.GET("/search", h.Search)
	profiles.GET("/:id", h.Get)
	profiles.PUT("/:id", h.Upsert)
	profiles.DELETE("/:id", h.Delete)
	profiles.GET("/:id/lineage", h.GetLineage)

	if eh != nil {
		profiles.GET("/:id/evaluations", eh.GetHistory)
		profiles.GET("/:id/evaluations/compare", eh.Compare)
	}

	api.POST("/lineage/edges", h.AddLineageEdge)
}

func registerHonorRoutes(api *gin.RouterGroup, h *handlers.HonorHandler) {
	if h == nil {
		return
	}
	api.POST("/honors/classify", h.Classify)
}
