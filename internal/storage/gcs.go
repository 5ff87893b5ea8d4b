package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
)

const gcsOpTimeout = 2 * time.Minute

// GCSStore persists uploads in a Google Cloud Storage bucket. Locators have
// the shape gs://bucket/key.
type GCSStore struct {
	client       *storage.Client
	bucket       string
	maxSizeBytes int64
	log          *logger.Logger
}

func NewGCSStore(ctx context.Context, baseLog *logger.Logger, bucket string, maxSizeBytes int64, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client:       client,
		bucket:       bucket,
		maxSizeBytes: maxSizeBytes,
		log:          baseLog.With("service", "GCSStore"),
	}, nil
}

func (s *GCSStore) Save(ctx context.Context, originalName string, r io.Reader) (SavedUpload, error) {
	if originalName == "" {
		originalName = "upload.csv"
	}
	key := "uploads/" + uuid.New().String() + extensionOf(originalName)

	wctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(wctx)
	w.ContentType = "text/csv"

	written, err := copyCapped(w, r, s.maxSizeBytes)
	if err != nil {
		// Cancel before Close so the partial object is abandoned, not committed.
		cancel()
		_ = w.Close()
		return SavedUpload{}, fmt.Errorf("failed to write upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return SavedUpload{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return SavedUpload{
		OriginalName: originalName,
		Locator:      fmt.Sprintf("gs://%s/%s", s.bucket, key),
		SizeBytes:    written,
	}, nil
}

func (s *GCSStore) Materialize(ctx context.Context, locator string, localPath string) error {
	bucket, key, err := SplitRemoteLocator(locator)
	if err != nil {
		return err
	}

	rctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	r, err := s.client.Bucket(bucket).Object(key).NewReader(rctx)
	if err != nil {
		return fmt.Errorf("failed to open GCS reader for %s: %w", locator, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", localPath, err)
	}
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("failed to download %s: %w", locator, err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, locator string) {
	bucket, key, err := SplitRemoteLocator(locator)
	if err != nil {
		s.log.Warn("Invalid locator for deletion", "locator", locator, "error", err)
		return
	}
	dctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(bucket).Object(key).Delete(dctx); err != nil {
		s.log.Warn("Failed to delete GCS object", "locator", locator, "error", err)
	}
}
