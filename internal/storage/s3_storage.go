package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bizdir/internal/config"
)

// S3Storage talks to any S3-compatible endpoint (MinIO, R2, AWS).
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	endpoint  string
	useSSL    bool
}

// NewS3Storage connects and creates the bucket when it does not exist yet.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		slog.Info("s3 bucket created", "bucket", cfg.Bucket)
	}
	slog.Info("s3 storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "ssl", cfg.UseSSL)

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		endpoint:  cfg.Endpoint,
		useSSL:    cfg.UseSSL,
	}, nil
}

func (s *S3Storage) Name() string { return "s3" }

func (s *S3Storage) Store(ctx context.Context, r io.Reader, objectPath, contentType string) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	// size -1 streams until EOF
	if _, err := s.client.PutObject(ctx, s.bucket, p, r, -1, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.url(p), nil
}

func (s *S3Storage) Delete(ctx context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, p, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Storage) url(p string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + p
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, p)
}
