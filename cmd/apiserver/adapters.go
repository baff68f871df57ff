package main

import (
	"context"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/neo4j"
	neo4jrepos "github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/redis"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/storage/minio"
	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/http/handlers"
)

// newLogger bridges the platform config into the logging package.
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

// infrastructure bundles every optional dependency behind the application
// ports. A component that failed to connect stays nil, which the services
// treat as "feature disabled" rather than an error.
type infrastructure struct {
	Cache          reputation.Cache
	Leaderboard    reputation.Leaderboard
	Events         reputation.EventPublisher
	ProfileEvents  directory.EventPublisher
	ScoreIndexer   reputation.Indexer
	ProfileIndexer directory.ProfileIndexer
	Searcher       directory.ProfileSearcher
	Exports        reputation.ExportStore
	Lineage        profile.LineageRepository

	redisClient      *redis.Client
	producer         *kafka.Producer
	opensearchClient *opensearch.Client
	minioClient      *minio.Client
	neo4jDriver      *neo4j.Driver
}

// setupInfrastructure connects the optional backends. Each failure is logged
// and the component skipped; only postgres is mandatory and handled by main.
func setupInfrastructure(ctx context.Context, cfg *config.Config, logger logging.Logger) *infrastructure {
	infra := &infrastructure{}

	if client, err := redis.NewClient(ctx, cfg.Redis, logger); err != nil {
		logger.Warn("redis unavailable, evaluation cache and leaderboard disabled", logging.Err(err))
	} else {
		infra.redisClient = client
		infra.Cache = redis.NewCache(client)
		infra.Leaderboard = redis.NewLeaderboard(client)
	}

	if producer, err := kafka.NewProducer(cfg.Kafka, logger); err != nil {
		logger.Warn("kafka unavailable, event publishing disabled", logging.Err(err))
	} else {
		infra.producer = producer
		publisher := kafka.NewPublisher(producer)
		infra.Events = publisher
		infra.ProfileEvents = publisher
		ensureTopics(ctx, cfg.Kafka, logger)
	}

	if client, err := opensearch.NewClient(cfg.OpenSearch, logger); err != nil {
		logger.Warn("opensearch unavailable, directory search disabled", logging.Err(err))
	} else {
		infra.opensearchClient = client
		indexer := opensearch.NewIndexer(client)
		if err := indexer.EnsureProfileIndex(ctx); err != nil {
			logger.Warn("failed to ensure profile index", logging.Err(err))
		}
		infra.ScoreIndexer = indexer
		infra.ProfileIndexer = indexer
		infra.Searcher = opensearch.NewSearcher(client)
	}

	if client, err := minio.NewClient(ctx, cfg.MinIO, logger); err != nil {
		logger.Warn("minio unavailable, evaluation export disabled", logging.Err(err))
	} else {
		infra.minioClient = client
		infra.Exports = minio.NewExportStore(client)
	}

	if driver, err := neo4j.NewDriver(cfg.Neo4j, logger); err != nil {
		logger.Warn("neo4j unavailable, lineage graph disabled", logging.Err(err))
	} else {
		infra.neo4jDriver = driver
		lineage := neo4jrepos.NewLineageRepository(driver, logger)
		if err := lineage.EnsureSchema(ctx); err != nil {
			logger.Warn("failed to ensure lineage schema", logging.Err(err))
		}
		infra.Lineage = lineage
	}

	return infra
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	if !cfg.AutoCreateTopics {
		return
	}
	manager, err := kafka.NewTopicManager(cfg, logger)
	if err != nil {
		logger.Warn("failed to connect kafka admin", logging.Err(err))
		return
	}
	defer manager.Close()
	if err := manager.EnsureDefaultTopics(ctx); err != nil {
		logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

// RegisterHealthChecks wires every live backend into the readiness probe.
func (i *infrastructure) RegisterHealthChecks(h *handlers.HealthHandler) {
	if i.redisClient != nil {
		h.Register("redis", i.redisClient.HealthCheck)
	}
	if i.opensearchClient != nil {
		h.Register("opensearch", i.opensearchClient.Ping)
	}
	if i.minioClient != nil {
		h.Register("minio", i.minioClient.HealthCheck)
	}
	if i.neo4jDriver != nil {
		h.Register("neo4j", i.neo4jDriver.HealthCheck)
	}
}

// Close releases every live connection in reverse dependency order.
func (i *infrastructure) Close(logger logging.Logger) {
	if i.neo4jDriver != nil {
		if err := i.neo4jDriver.Close(); err != nil {
			logger.Warn("neo4j close error", logging.Err(err))
		}
	}
	if i.minioClient != nil {
		if err := i.minioClient.Close(); err != nil {
			logger.Warn("minio close error", logging.Err(err))
		}
	}
	if i.opensearchClient != nil {
		if err := i.opensearchClient.Close(); err != nil {
			logger.Warn("opensearch close error", logging.Err(err))
		}
	}
	if i.producer != nil {
		if err := i.producer.Close(); err != nil {
			logger.Warn("kafka producer close error", logging.Err(err))
		}
	}
	if i.redisClient != nil {
		if err := i.redisClient.Close(); err != nil {
			logger.Warn("redis close error", logging.Err(err))
		}
	}
}
