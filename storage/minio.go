package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cuefm/config"
	"cuefm/logger"
)

// MinioProvider stores blobs in a MinIO/S3 bucket, served through the
// /media/ proxy route.
type MinioProvider struct {
	client *minio.Client
	bucket string
}

// NewMinioProvider connects to the configured endpoint and ensures the
// bucket exists.
func NewMinioProvider(cfg *config.Config) (*MinioProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("[Storage] Created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &MinioProvider{client: client, bucket: cfg.MinioBucket}, nil
}

// Save uploads the blob.
func (p *MinioProvider) Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, p.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return "/media/" + objectName, nil
}

// Remove deletes the blob.
func (p *MinioProvider) Remove(ctx context.Context, objectName string) error {
	return p.client.RemoveObject(ctx, p.bucket, objectName, minio.RemoveObjectOptions{})
}

// Object opens the blob for the media proxy route. The caller closes it.
func (p *MinioProvider) Object(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", objectName, err)
	}
	return obj, nil
}
