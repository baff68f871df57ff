//go:build integration

// Package integration spins up real postgres and redis containers and runs
// the application services against them. Tests require Docker and are gated
// behind the "integration" build tag.
package integration

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/redis"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
)

const containerStartupTimeout = 60 * time.Second

// startPostgres launches a PostgreSQL 16 container, runs the schema
// migrations, and returns a connected pool wrapper.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "medrank",
			"POSTGRES_PASSWORD": "medrank",
			"POSTGRES_DB":       "medrank_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(containerStartupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "medrank",
		Password: "medrank",
		DBName:   "medrank_test",
		SSLMode:  "disable",
		MaxConns: 5,
	}

	require.NoError(t, postgres.RunMigrations(postgres.BuildDSN(cfg), "file://../../migrations"))

	conn, err := postgres.NewConnection(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

// startRedis launches a Redis 7 container and returns a connected client.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(containerStartupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redis.NewClient(ctx, config.RedisConfig{
		Addr:      fmt.Sprintf("%s:%s", host, port.Port()),
		KeyPrefix: "medrank_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// repos bundles the postgres repositories used by the flow tests.
type repos struct {
	Profiles    *repositories.ProfileRepository
	Evaluations *repositories.EvaluationRepository
}

func newRepos(conn *postgres.Connection) repos {
	log := logging.NewNopLogger()
	return repos{
		Profiles:    repositories.NewProfileRepository(conn.Pool(), log),
		Evaluations: repositories.NewEvaluationRepository(conn.Pool(), log),
	}
}

// uniqueID suffixes a prefix with nanoseconds so parallel tests never clash.
func uniqueID(prefix string) string {
	return prefix + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
