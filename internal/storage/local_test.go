package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestLocalStoreSaveAndMaterialize(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 0, testLogger(t))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	saved, err := store.Save(context.Background(), "products.csv", strings.NewReader("sku,name\na,1\n"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.OriginalName != "products.csv" {
		t.Fatalf("original name: got=%q", saved.OriginalName)
	}
	if saved.SizeBytes != int64(len("sku,name\na,1\n")) {
		t.Fatalf("size: got=%d", saved.SizeBytes)
	}
	if IsRemoteLocator(saved.Locator) {
		t.Fatalf("local locator should be a plain path: %q", saved.Locator)
	}
	if filepath.Ext(saved.Locator) != ".csv" {
		t.Fatalf("locator extension: got=%q", saved.Locator)
	}

	dest := filepath.Join(t.TempDir(), "copy.csv")
	if err := store.Materialize(context.Background(), saved.Locator, dest); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "sku,name\na,1\n" {
		t.Fatalf("copied content mismatch: %q", data)
	}
}

func TestLocalStoreSaveEnforcesSizeCap(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 4, testLogger(t))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	_, err = store.Save(context.Background(), "big.csv", strings.NewReader("more than four bytes"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got=%v", err)
	}
}

func TestLocalStoreSaveCapRejectsPartialFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, 4, testLogger(t))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	_, _ = store.Save(context.Background(), "big.csv", strings.NewReader("more than four bytes"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("oversized upload left %d files behind", len(entries))
	}
}

func TestLocalStoreDeleteIsIdempotent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 0, testLogger(t))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	saved, err := store.Save(context.Background(), "x.csv", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Delete(context.Background(), saved.Locator)
	if _, err := os.Stat(saved.Locator); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err=%v", err)
	}
	// Second delete of a missing file stays quiet.
	store.Delete(context.Background(), saved.Locator)
}
