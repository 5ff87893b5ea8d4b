package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
)

// LocalStore persists uploads under a base directory. Locators are plain
// filesystem paths.
type LocalStore struct {
	baseDir      string
	maxSizeBytes int64
	log          *logger.Logger
}

func NewLocalStore(baseDir string, maxSizeBytes int64, baseLog *logger.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", baseDir, err)
	}
	return &LocalStore{
		baseDir:      baseDir,
		maxSizeBytes: maxSizeBytes,
		log:          baseLog.With("service", "LocalStore"),
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (SavedUpload, error) {
	if originalName == "" {
		originalName = "upload.csv"
	}
	dest := filepath.Join(s.baseDir, uuid.New().String()+extensionOf(originalName))

	f, err := os.Create(dest)
	if err != nil {
		return SavedUpload{}, fmt.Errorf("create %s: %w", dest, err)
	}

	written, err := copyCapped(f, r, s.maxSizeBytes)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return SavedUpload{}, err
	}

	return SavedUpload{
		OriginalName: originalName,
		Locator:      dest,
		SizeBytes:    written,
	}, nil
}

func (s *LocalStore) Materialize(ctx context.Context, locator string, localPath string) error {
	src, err := os.Open(locator)
	if err != nil {
		return fmt.Errorf("open %s: %w", locator, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", localPath, err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *LocalStore) Delete(ctx context.Context, locator string) {
	if err := os.Remove(locator); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to delete stored file", "locator", locator, "error", err)
	}
}

// copyCapped copies r into w, failing with ErrTooLarge once more than max
// bytes have been read. max <= 0 means unlimited.
func copyCapped(w io.Writer, r io.Reader, max int64) (int64, error) {
	if max <= 0 {
		return io.Copy(w, r)
	}
	written, err := io.Copy(w, io.LimitReader(r, max+1))
	if err != nil {
		return written, err
	}
	if written > max {
		return written, ErrTooLarge
	}
	return written, nil
}
