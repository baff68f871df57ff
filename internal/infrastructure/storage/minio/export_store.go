package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// ExportStore persists evaluation export artifacts and returns presigned
// download links. It satisfies the reputation export-store port.
type ExportStore struct {
	client *Client
	logger logging.Logger
}

// NewExportStore builds a store over an established client.
func NewExportStore(client *Client) *ExportStore {
	return &ExportStore{client: client, logger: client.logger.Named("exports")}
}

// Put uploads data under key and returns a presigned GET link. When
// presigning fails the upload still counts; the object path is returned
// instead.
func (s *ExportStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", appErrors.InvalidParam("object key is required")
	}
	if len(data) == 0 {
		return "", appErrors.InvalidParam("object data is required")
	}

	bucket := s.client.Bucket()
	_, err := s.client.api.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeEvaluationExportError, "store export artifact")
	}
	s.logger.Debug("export stored",
		logging.String("key", key),
		logging.Int("bytes", len(data)),
	)

	expiry := s.client.cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := s.client.api.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		s.logger.Warn("presign failed, returning object path", logging.Err(err))
		return bucket + "/" + key, nil
	}
	return u.String(), nil
}

// Get downloads the artifact stored under key.
func (s *ExportStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.api.GetObject(ctx, s.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEvaluationExportError, "fetch export artifact")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeEvaluationExportError, "read export artifact")
	}
	return data, nil
}

// Delete removes the artifact stored under key.
func (s *ExportStore) Delete(ctx context.Context, key string) error {
	err := s.client.api.RemoveObject(ctx, s.client.Bucket(), key, minio.RemoveObjectOptions{})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeEvaluationExportError, "delete export artifact")
	}
	return nil
}
