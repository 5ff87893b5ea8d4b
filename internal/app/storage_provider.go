package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/storage"
)

const (
	StorageModeLocal = "local"
	StorageModeGCS   = "gcs"
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode   StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingBucket StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  string
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "blob storage bootstrap failed"
	}
	return fmt.Sprintf("blob storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBlobStore picks the upload store from config. Local disk is the
// default; gcs requires a bucket name.
func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg Config) (storage.BlobStore, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.StorageMode))
	if mode == "" {
		mode = StorageModeLocal
	}
	maxSizeBytes := int64(cfg.MaxUploadSizeMB) * 1024 * 1024

	log.Info("Selecting blob storage provider", "mode", mode, "max_upload_mb", cfg.MaxUploadSizeMB)

	switch mode {
	case StorageModeLocal:
		store, err := storage.NewLocalStore(cfg.UploadDir, maxSizeBytes, log)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: mode, Cause: err}
		}
		return store, nil
	case StorageModeGCS:
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, &StorageBootstrapError{
				Code:  StorageBootstrapErrorMissingBucket,
				Mode:  mode,
				Cause: fmt.Errorf("GCS_BUCKET is required when STORAGE_MODE=gcs"),
			}
		}
		store, err := storage.NewGCSStore(ctx, log, cfg.GCSBucket, maxSizeBytes)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: mode, Cause: err}
		}
		return store, nil
	default:
		return nil, &StorageBootstrapError{
			Code:  StorageBootstrapErrorInvalidMode,
			Mode:  mode,
			Cause: fmt.Errorf("unsupported storage mode %q", mode),
		}
	}
}
