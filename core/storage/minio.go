package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioAPI is the subset of *minio.Client used by the MinIO adapter.
type MinioAPI interface {
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// MakeBucket creates a new bucket.
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	// PutObject uploads an object.
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioClient stores nodes in a MinIO-compatible object store.
type MinioClient struct {
	*objectClient
}

// NewMinioClient creates a MinIO adapter. No request is sent until the first operation.
func NewMinioClient(cfg MinioConfig, logger *zap.Logger) (*MinioClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Minio expects endpoint without scheme
	endpoint, secure := splitEndpoint(cfg.Endpoint)

	api, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.Username, cfg.Password, ""),
		Secure:    secure,
		Region:    cfg.Region,
		Transport: newTransport(cfg.TimeoutSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return NewMinioClientWithAPI(api, cfg.Prefix, cfg.Region, logger), nil
}

// NewMinioClientWithAPI wraps an existing MinioAPI.
func NewMinioClientWithAPI(api MinioAPI, prefix, region string, logger *zap.Logger) *MinioClient {
	return &MinioClient{&objectClient{
		provider: ProviderMinio,
		backend:  &minioBackend{api: api, region: region, logger: logger},
		prefix:   prefix,
		logger:   logger,
	}}
}

func splitEndpoint(endpoint string) (string, bool) {
	endpoint = strings.TrimSpace(endpoint)
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return strings.TrimSuffix(rest, "/"), true
	}
	return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
}

type minioBackend struct {
	api    MinioAPI
	region string
	logger *zap.Logger
}

func (b *minioBackend) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := b.api.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		b.logger.Debug("Using existing bucket", zap.String("bucket", bucket))
		return nil
	}

	if err := b.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: b.region}); err != nil {
		// A concurrent operation may have created it between the check and the create.
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	b.logger.Info("Created bucket", zap.String("bucket", bucket))
	return nil
}

func (b *minioBackend) putObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := b.api.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}
