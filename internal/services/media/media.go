package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/princekumarofficial/media-migration/internal/config"
)

// Service checks media blobs in the gallery bucket. It never writes to the bucket.
type Service struct {
	client     *minio.Client
	bucketName string
}

// NewService creates a new media service instance
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &Service{
		client:     client,
		bucketName: cfg.MinIO.BucketName,
	}

	if err := service.checkBucket(ctx); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *Service) checkBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

// ObjectKey turns a stored path into a bucket key. Paths may carry a leading
// slash or the bucket name as their first segment.
func (s *Service) ObjectKey(storagePath string) string {
	key := strings.TrimPrefix(storagePath, "/")
	return strings.TrimPrefix(key, s.bucketName+"/")
}

// ObjectExists reports whether the blob behind a media row is still in the bucket.
func (s *Service) ObjectExists(ctx context.Context, storagePath string) (bool, error) {
	key := s.ObjectKey(storagePath)
	if key == "" {
		return false, nil
	}

	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return false, nil
	}

	return false, fmt.Errorf("failed to stat object %s: %w", key, err)
}
