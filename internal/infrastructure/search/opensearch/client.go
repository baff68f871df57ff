// Package opensearch maintains the practitioner search index: one document
// per profile, enriched with the latest evaluation so the directory can be
// searched and ranked by score.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

const healthCheckInterval = 30 * time.Second

// Client wraps the OpenSearch API client with a background health probe.
type Client struct {
	api     *opensearchapi.Client
	cfg     config.OpenSearchConfig
	logger  logging.Logger
	healthy atomic.Bool
	cancel  context.CancelFunc
}

// NewClient connects and verifies the cluster with a ping.
func NewClient(cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, appErrors.InvalidParam("opensearch.addresses must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearchgo.Config{
			Addresses:     cfg.Addresses,
			Username:      cfg.User,
			Password:      cfg.Password,
			Transport:     transport,
			MaxRetries:    3,
			RetryOnStatus: []int{429, 502, 503, 504},
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "create opensearch client")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		api:    api,
		cfg:    cfg,
		logger: log.Named("opensearch"),
		cancel: cancel,
	}

	if err := c.Ping(ctx); err != nil {
		cancel()
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "ping opensearch")
	}
	go c.healthLoop(ctx)

	c.logger.Info("opensearch connected", logging.Int("nodes", len(cfg.Addresses)))
	return c, nil
}

// API exposes the underlying typed client.
func (c *Client) API() *opensearchapi.Client { return c.api }

// Ping probes the cluster and records the result.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.api.Ping(ctx, nil)
	if err != nil {
		c.healthy.Store(false)
		return err
	}
	if resp != nil && resp.IsError() {
		c.healthy.Store(false)
		return appErrors.New(appErrors.ErrCodeSearchIndexError, "ping returned error status")
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the last probe result.
func (c *Client) IsHealthy() bool { return c.healthy.Load() }

// IndexName namespaces a logical index under the configured prefix.
func (c *Client) IndexName(name string) string {
	prefix := c.cfg.IndexPrefix
	if prefix == "" {
		prefix = "medrank"
	}
	return prefix + "-" + name
}

// Close stops the health probe.
func (c *Client) Close() error {
	c.cancel()
	c.logger.Info("opensearch client closed")
	return nil
}

func (c *Client) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev := c.healthy.Load()
			err := c.Ping(ctx)
			curr := c.healthy.Load()
			if prev && !curr {
				c.logger.Error("opensearch cluster became unhealthy", logging.Err(err))
			} else if !prev && curr {
				c.logger.Info("opensearch cluster recovered")
			}
		}
	}
}
