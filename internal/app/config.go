package app

import (
	"strings"
	"time"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/utils"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	StorageMode     string
	UploadDir       string
	GCSBucket       string
	MaxUploadSizeMB int

	ChunkSize         int
	WorkerConcurrency int
	WorkerMaxAttempts int
	WorkerRetryDelay  time.Duration
	WorkerStaleAfter  time.Duration

	WebhookTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisChannel  string
}

func LoadConfig(log *logger.Logger) Config {
	origins := []string{}
	for _, origin := range strings.Split(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000", log), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		Environment:    utils.GetEnv("APP_ENV", "development", log),
		AllowedOrigins: origins,

		StorageMode:     utils.GetEnv("STORAGE_MODE", "local", log),
		UploadDir:       utils.GetEnv("UPLOAD_DIR", "/tmp/catalog-uploads", log),
		GCSBucket:       utils.GetEnv("GCS_BUCKET", "", log),
		MaxUploadSizeMB: utils.GetEnvAsInt("MAX_UPLOAD_SIZE_MB", 50, log),

		ChunkSize:         utils.GetEnvAsInt("INGEST_CHUNK_SIZE", 2000, log),
		WorkerConcurrency: utils.GetEnvAsInt("WORKER_CONCURRENCY", 2, log),
		WorkerMaxAttempts: utils.GetEnvAsInt("WORKER_MAX_ATTEMPTS", 3, log),
		WorkerRetryDelay:  time.Duration(utils.GetEnvAsInt("WORKER_RETRY_DELAY_SECONDS", 10, log)) * time.Second,
		WorkerStaleAfter:  time.Duration(utils.GetEnvAsInt("WORKER_STALE_AFTER_SECONDS", 600, log)) * time.Second,

		WebhookTimeout: time.Duration(utils.GetEnvAsInt("WEBHOOK_TIMEOUT_SECONDS", 10, log)) * time.Second,

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisChannel:  utils.GetEnv("REDIS_JOB_CHANNEL", "catalog:upload_jobs", log),
	}
}
