// Package testutil provides database fixtures for repository tests. SQLite
// backs the fast unit tests; Postgres-specific behavior (citext, SKIP LOCKED)
// is exercised only when TEST_POSTGRES_DSN is set.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

func migrateAll(tb testing.TB, db *gorm.DB) {
	tb.Helper()
	err := db.AutoMigrate(
		&types.Product{},
		&types.UploadJob{},
		&types.TaskRun{},
		&types.Webhook{},
		&types.WebhookDelivery{},
	)
	if err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
}

// SQLite opens a throwaway file-backed database with the full schema.
func SQLite(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	migrateAll(tb, db)
	return db
}

// Postgres connects to TEST_POSTGRES_DSN, skipping the test when unset. Each
// caller gets a migrated schema; tests should isolate their writes in a
// transaction via Tx.
func Postgres(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set; skipping postgres-backed test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open postgres: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "citext";`).Error; err != nil {
		tb.Fatalf("enable citext: %v", err)
	}
	migrateAll(tb, db)
	return db
}

// Tx begins a transaction that rolls back when the test finishes.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}
