package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTooLarge is returned by Save when the stream exceeds the configured cap.
var ErrTooLarge = errors.New("uploaded file exceeds allowed size")

// SavedUpload describes a persisted upload.
type SavedUpload struct {
	OriginalName string
	Locator      string
	SizeBytes    int64
}

// BlobStore is durable byte storage keyed by an opaque locator. Local storage
// uses plain filesystem paths; object storage uses scheme://bucket/key URIs.
// Callers branch only on the locator shape, never on the implementation.
type BlobStore interface {
	// Save streams the upload to durable storage under a fresh unique key.
	Save(ctx context.Context, originalName string, r io.Reader) (SavedUpload, error)
	// Materialize copies the blob behind locator to localPath.
	Materialize(ctx context.Context, locator string, localPath string) error
	// Delete removes the blob. Best-effort: failures are logged, not returned.
	Delete(ctx context.Context, locator string)
}

// IsRemoteLocator reports whether locator is a scheme://bucket/key URI rather
// than a local filesystem path.
func IsRemoteLocator(locator string) bool {
	i := strings.Index(locator, "://")
	return i > 0
}

// SplitRemoteLocator splits scheme://bucket/key into bucket and key.
func SplitRemoteLocator(locator string) (bucket string, key string, err error) {
	i := strings.Index(locator, "://")
	if i <= 0 {
		return "", "", fmt.Errorf("invalid remote locator %q", locator)
	}
	rest := locator[i+len("://"):]
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid remote locator %q", locator)
	}
	return parts[0], parts[1], nil
}

func extensionOf(originalName string) string {
	name := strings.TrimSpace(originalName)
	if j := strings.LastIndex(name, "."); j >= 0 && j < len(name)-1 {
		return name[j:]
	}
	return ".csv"
}
