// Package minio stores export artifacts in object storage and hands out
// presigned download links.
package minio

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// exportRetentionDays bounds how long export artifacts are kept.
const exportRetentionDays = 30

// API is the slice of the minio-go client the platform uses. Narrowed for
// testability.
type API interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Client owns the minio connection and the export bucket.
type Client struct {
	api    API
	cfg    config.MinIOConfig
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects, verifies reachability, and ensures the export bucket
// exists with its retention rule.
func NewClient(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, appErrors.InvalidParam("minio.endpoint must not be empty")
	}
	if cfg.Bucket == "" {
		return nil, appErrors.InvalidParam("minio.bucket must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeInternal, "create minio client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := api.ListBuckets(pingCtx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeServiceUnavailable, "connect to minio")
	}

	c := &Client{api: api, cfg: cfg, logger: log.Named("minio")}
	if err := c.ensureBucket(pingCtx); err != nil {
		return nil, err
	}

	log.Info("minio connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return c, nil
}

// NewClientWithAPI wraps an existing API. Used by tests.
func NewClientWithAPI(api API, cfg config.MinIOConfig, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{api: api, cfg: cfg, logger: log.Named("minio")}
}

// API exposes the underlying storage API.
func (c *Client) API() API { return c.api }

// Bucket returns the export bucket name.
func (c *Client) Bucket() string { return c.cfg.Bucket }

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeInternal, "check bucket")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeInternal, "create bucket "+c.cfg.Bucket)
		}
		c.logger.Info("bucket created", logging.String("bucket", c.cfg.Bucket))
	}

	retention := lifecycle.NewConfiguration()
	retention.Rules = []lifecycle.Rule{{
		ID:         "exports-cleanup",
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: exportRetentionDays},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.cfg.Bucket, retention); err != nil {
		// Retention is best-effort: some deployments disable lifecycle.
		c.logger.Warn("failed to set bucket lifecycle", logging.Err(err))
	}
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return appErrors.InvalidState("minio client is closed")
	}
	exists, err := c.api.BucketExists(ctx, c.cfg.Bucket)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeServiceUnavailable, "minio health check")
	}
	if !exists {
		return appErrors.New(appErrors.ErrCodeServiceUnavailable, "export bucket missing")
	}
	return nil
}

// Close marks the client closed. minio-go holds no persistent connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
