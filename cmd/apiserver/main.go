// Command apiserver runs the MedRank reputation platform: the HTTP API,
// the gRPC evaluation service, and the Prometheus metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/prometheus"
	grpcserver "github.com/openmdr/MedRank-Intelligence/internal/interfaces/grpc"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/grpc/services"
	httpserver "github.com/openmdr/MedRank-Intelligence/internal/interfaces/http"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/handlers"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	skipMigrations := flag.Bool("skip-migrations", false, "do not run database migrations on startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort > 0 {
		cfg.GRPC.Port = *grpcPort
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting medrank api server",
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.GRPC.Port),
	)

	ctx := context.Background()

	// Metrics. A collector failure only costs observability, not service.
	var (
		appMetrics  *prometheus.AppMetrics
		portAdapter *prometheus.PortAdapter
	)
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "medrank",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Warn("metrics collector unavailable", logging.Err(err))
	} else {
		appMetrics = prometheus.NewAppMetrics(collector)
		portAdapter = prometheus.NewPortAdapter(collector)
	}

	// PostgreSQL is the source of truth; refuse to start without it.
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", logging.Err(err))
		os.Exit(1)
	}
	defer conn.Close()

	if !*skipMigrations && cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.BuildDSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			logger.Error("database migrations failed", logging.Err(err))
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	profileRepo := pgrepos.NewProfileRepository(conn.Pool(), logger)
	evaluationRepo := pgrepos.NewEvaluationRepository(conn.Pool(), logger)

	// Everything beyond postgres degrades gracefully: a missing mirror or
	// broker downgrades the relevant port to a no-op.
	infra := setupInfrastructure(ctx, cfg, logger)
	defer infra.Close(logger)

	engine := scoring.MustNewEngine(scoring.DefaultEngineConfig())

	var reputationMetrics reputation.MetricsCollector
	if portAdapter != nil {
		reputationMetrics = portAdapter
	}

	reputationSvc := reputation.NewService(
		profileRepo,
		evaluationRepo,
		engine,
		infra.Cache,
		infra.Events,
		infra.ScoreIndexer,
		infra.Leaderboard,
		infra.Exports,
		reputationMetrics,
		logger,
		reputation.DefaultServiceConfig(),
	)
	directorySvc := directory.NewService(
		profileRepo,
		infra.Lineage,
		infra.ProfileIndexer,
		infra.Searcher,
		infra.ProfileEvents,
		logger,
	)

	// Health endpoints aggregate every live dependency.
	health := handlers.NewHealthHandler(logger, appMetrics)
	health.Register("postgres", conn.HealthCheck)
	infra.RegisterHealthChecks(health)

	routerCfg := httpserver.RouterConfig{
		EvaluationHandler: handlers.NewEvaluationHandler(reputationSvc),
		ProfileHandler:    handlers.NewProfileHandler(directorySvc),
		HonorHandler:      handlers.NewHonorHandler(),
		HealthHandler:     health,
		Logger:            logger,
		AppMetrics:        appMetrics,
		RateLimiter:       middleware.NewTokenBucketLimiter(100, 200, time.Minute),
		Mode:              cfg.Server.Mode,
	}
	if collector != nil {
		routerCfg.Metrics = collector.Handler()
	}

	httpSrv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	grpcOpts := []grpcserver.Option{grpcserver.WithLogger(logger)}
	if portAdapter != nil {
		grpcOpts = append(grpcOpts, grpcserver.WithMetrics(portAdapter))
	}
	grpcSrv, err := grpcserver.NewServer(cfg.GRPC, grpcOpts...)
	if err != nil {
		logger.Error("failed to build grpc server", logging.Err(err))
		os.Exit(1)
	}
	grpcSrv.RegisterService(&services.EvaluationServiceDesc,
		services.NewEvaluationServiceServer(reputationSvc, logger))

	errCh := make(chan error, 2)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("grpc server listening", logging.String("addr", grpcSrv.Addr()))
		if err := grpcSrv.Start(); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", logging.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server failed", logging.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error("grpc server shutdown error", logging.Err(err))
	}
	logger.Info("servers stopped")
}

// loadConfig reads the config file when present and falls back to
// environment variables, so a containerized deploy needs no file at all.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 30 * time.Second
}
