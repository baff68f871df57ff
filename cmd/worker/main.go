// Command worker consumes directory change events and keeps evaluations
// current: a profile update triggers a fresh engine run, a profile deletion
// removes the cached evaluation, the leaderboard entry, and the search
// document. Messages that keep failing are dead-lettered so a partition
// never stalls.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/redis"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/search/opensearch"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", 8081, "port for the health endpoint")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	logger.Info("starting medrank worker",
		logging.Int("concurrency", cfg.Worker.Concurrency),
		logging.Int("max_retries", cfg.Worker.MaxRetries),
	)

	ctx := context.Background()

	// The worker re-scores against the source of truth; postgres and the
	// broker are both mandatory.
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", logging.Err(err))
		os.Exit(1)
	}
	defer conn.Close()

	profileRepo := pgrepos.NewProfileRepository(conn.Pool(), logger)
	evaluationRepo := pgrepos.NewEvaluationRepository(conn.Pool(), logger)

	deps := setupWorkerDeps(ctx, cfg, logger)
	defer deps.Close(logger)

	engine := scoring.MustNewEngine(scoring.DefaultEngineConfig())
	svc := reputation.NewService(
		profileRepo,
		evaluationRepo,
		engine,
		deps.Cache,
		deps.Events,
		deps.Indexer,
		deps.Leaderboard,
		nil, // exports are an API-server concern
		nil,
		logger,
		reputation.DefaultServiceConfig(),
	)

	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		[]string{kafka.TopicProfileUpdated, kafka.TopicProfileDeleted},
		kafka.RetryPolicy{
			MaxRetries:      cfg.Worker.MaxRetries,
			Backoff:         cfg.Worker.RetryBackoff,
			DeadLetterTopic: kafka.TopicDeadLetter,
		},
		logger,
	)
	if err != nil {
		logger.Error("failed to build kafka consumer", logging.Err(err))
		os.Exit(1)
	}

	w := &worker{service: svc, deps: deps, logger: logger}
	consumer.Subscribe(kafka.TopicProfileUpdated, w.handleProfileUpdated)
	consumer.Subscribe(kafka.TopicProfileDeleted, w.handleProfileDeleted)

	if err := consumer.Start(ctx); err != nil {
		logger.Error("failed to start consumer", logging.Err(err))
		os.Exit(1)
	}

	healthSrv := startHealthServer(*healthPort, conn, consumer, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", logging.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	if err := consumer.Close(); err != nil {
		logger.Error("consumer close error", logging.Err(err))
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	logger.Info("worker stopped")
}

// worker holds the message handlers.
type worker struct {
	service reputation.Service
	deps    *workerDeps
	logger  logging.Logger
}

// handleProfileUpdated re-scores the profile. SkipCache guarantees the run
// reflects the update rather than a cached evaluation.
func (w *worker) handleProfileUpdated(ctx context.Context, msg *kafka.Message) error {
	envelope, err := kafka.ParseEnvelope(msg)
	if err != nil {
		// Malformed envelopes never become valid; drop instead of retrying.
		w.logger.Warn("dropping malformed event", logging.Err(err))
		return nil
	}

	var payload kafka.ProfileUpdatedPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		w.logger.Warn("dropping undecodable payload",
			logging.String("event_id", envelope.EventID), logging.Err(err))
		return nil
	}

	_, err = w.service.Evaluate(ctx, reputation.EvaluateRequest{
		ProfileID: common.ProfileID(payload.ProfileID),
		SkipCache: true,
	})
	if appErrors.IsNotFound(err) {
		// The profile was deleted between the event and now.
		w.logger.Info("profile gone before re-score",
			logging.String("profile_id", payload.ProfileID))
		return nil
	}
	if err != nil {
		return err
	}

	w.logger.Info("profile re-scored", logging.String("profile_id", payload.ProfileID))
	return nil
}

// handleProfileDeleted clears every projection that could still rank or
// serve the removed profile.
func (w *worker) handleProfileDeleted(ctx context.Context, msg *kafka.Message) error {
	envelope, err := kafka.ParseEnvelope(msg)
	if err != nil {
		w.logger.Warn("dropping malformed event", logging.Err(err))
		return nil
	}

	var payload kafka.ProfileDeletedPayload
	if err := envelope.DecodePayload(&payload); err != nil {
		w.logger.Warn("dropping undecodable payload",
			logging.String("event_id", envelope.EventID), logging.Err(err))
		return nil
	}

	id := common.ProfileID(payload.ProfileID)
	if w.deps.Cache != nil {
		if err := w.deps.Cache.Delete(ctx, reputation.EvalCacheKey(id)); err != nil {
			return err
		}
	}
	if w.deps.Leaderboard != nil {
		if err := w.deps.Leaderboard.Remove(ctx, id); err != nil {
			return err
		}
	}
	if w.deps.SearchIndex != nil {
		if err := w.deps.SearchIndex.DeleteProfile(ctx, id); err != nil {
			return err
		}
	}

	w.logger.Info("profile projections removed", logging.String("profile_id", payload.ProfileID))
	return nil
}

// workerDeps holds the optional projections the worker maintains.
type workerDeps struct {
	Cache       reputation.Cache
	Leaderboard reputation.Leaderboard
	Events      reputation.EventPublisher
	Indexer     reputation.Indexer
	SearchIndex *opensearch.Indexer

	redisClient      *redis.Client
	producer         *kafka.Producer
	opensearchClient *opensearch.Client
}

func setupWorkerDeps(ctx context.Context, cfg *config.Config, logger logging.Logger) *workerDeps {
	deps := &workerDeps{}

	if client, err := redis.NewClient(ctx, cfg.Redis, logger); err != nil {
		logger.Warn("redis unavailable, cache and leaderboard updates disabled", logging.Err(err))
	} else {
		deps.redisClient = client
		deps.Cache = redis.NewCache(client)
		deps.Leaderboard = redis.NewLeaderboard(client)
	}

	if producer, err := kafka.NewProducer(cfg.Kafka, logger); err != nil {
		logger.Warn("kafka producer unavailable, evaluation events disabled", logging.Err(err))
	} else {
		deps.producer = producer
		deps.Events = kafka.NewPublisher(producer)
	}

	if client, err := opensearch.NewClient(cfg.OpenSearch, logger); err != nil {
		logger.Warn("opensearch unavailable, index updates disabled", logging.Err(err))
	} else {
		deps.opensearchClient = client
		indexer := opensearch.NewIndexer(client)
		deps.Indexer = indexer
		deps.SearchIndex = indexer
	}

	return deps
}

func (d *workerDeps) Close(logger logging.Logger) {
	if d.opensearchClient != nil {
		if err := d.opensearchClient.Close(); err != nil {
			logger.Warn("opensearch close error", logging.Err(err))
		}
	}
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			logger.Warn("kafka producer close error", logging.Err(err))
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			logger.Warn("redis close error", logging.Err(err))
		}
	}
}

// startHealthServer exposes liveness plus consumer counters for probes.
func startHealthServer(port int, conn *postgres.Connection, consumer *kafka.Consumer, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := conn.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "postgres": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(consumer.Metrics())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", logging.Err(err))
		}
	}()
	return srv
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	lc := logging.LogConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
	}
	if cfg.Output != "" {
		lc.OutputPaths = []string{cfg.Output}
	}
	return logging.NewLogger(lc)
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Worker.ShutdownTimeout > 0 {
		return cfg.Worker.ShutdownTimeout
	}
	return 30 * time.Second
}
