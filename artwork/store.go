package artwork

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"PalmFM/config"
	"PalmFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store keeps extracted and user-uploaded artwork in a MinIO bucket, keyed by
// track id. It is optional; a nil *Store is treated as "caching disabled".
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore connects to MinIO and ensures the artwork bucket exists.
func NewStore(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check artwork bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create artwork bucket: %w", err)
		}
		logger.Info("Artwork bucket created", logger.String("bucket", cfg.MinioBucket))
	}

	return &Store{client: client, bucket: cfg.MinioBucket}, nil
}

// ObjectName returns the object key for a track's artwork.
func ObjectName(trackID int64, ext string) string {
	return fmt.Sprintf("artwork/%d%s", trackID, ext)
}

// Put stores artwork bytes for a track and returns a locator of the form
// "minio://<object>".
func (s *Store) Put(ctx context.Context, trackID int64, data []byte, contentType, ext string) (string, error) {
	object := ObjectName(trackID, ext)
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store artwork for track %d: %w", trackID, err)
	}
	return "minio://" + object, nil
}

// Get opens artwork previously stored with Put. The locator must carry the
// "minio://" prefix.
func (s *Store) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	const prefix = "minio://"
	if len(locator) <= len(prefix) || locator[:len(prefix)] != prefix {
		return nil, fmt.Errorf("not a minio artwork locator: %s", locator)
	}
	object, err := s.client.GetObject(ctx, s.bucket, locator[len(prefix):], minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork object %s: %w", locator, err)
	}
	return object, nil
}
