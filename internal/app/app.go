package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/db"
	"github.com/yungbote/catalog-backend/internal/handlers"
	"github.com/yungbote/catalog-backend/internal/ingest"
	"github.com/yungbote/catalog-backend/internal/jobs/ingesttask"
	"github.com/yungbote/catalog-backend/internal/jobs/runtime"
	"github.com/yungbote/catalog-backend/internal/jobs/webhooktask"
	"github.com/yungbote/catalog-backend/internal/jobs/worker"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/server"
	"github.com/yungbote/catalog-backend/internal/services"
	"github.com/yungbote/catalog-backend/internal/storage"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config

	Blob   storage.BlobStore
	Worker *worker.Pool

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "catalog-backend",
		Environment: cfg.Environment,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	blob, err := resolveBlobStore(context.Background(), log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	// Repos
	productRepo := repos.NewProductRepo(theDB, log)
	uploadJobRepo := services.NewNotifyingUploadJobRepo(repos.NewUploadJobRepo(theDB, log), rdb, cfg.RedisChannel, log)
	taskRunRepo := repos.NewTaskRunRepo(theDB, log)
	webhookRepo := repos.NewWebhookRepo(theDB, log)
	deliveryRepo := repos.NewWebhookDeliveryRepo(theDB, log)

	// Services
	dispatcher := webhook.NewDispatcher(log, cfg.WebhookTimeout)
	events := services.NewEventEmitter(log, taskRunRepo)
	productService := services.NewProductService(log, productRepo, events)
	uploadService := services.NewUploadService(log, blob, uploadJobRepo, taskRunRepo)
	webhookService := services.NewWebhookService(log, webhookRepo, deliveryRepo, dispatcher)

	// Task handlers
	pipeline := ingest.NewPipeline(log, uploadJobRepo, productRepo, blob, ingest.Config{
		ChunkSize:  cfg.ChunkSize,
		ScratchDir: os.TempDir(),
	})
	registry := runtime.NewRegistry()
	if err := registry.Register(ingesttask.NewHandler(pipeline, taskRunRepo)); err != nil {
		log.Sync()
		return nil, err
	}
	if err := registry.Register(webhooktask.NewHandler(webhookRepo, deliveryRepo, dispatcher)); err != nil {
		log.Sync()
		return nil, err
	}
	pool := worker.NewPool(log, theDB, taskRunRepo, registry, worker.Config{
		Concurrency:  cfg.WorkerConcurrency,
		MaxAttempts:  cfg.WorkerMaxAttempts,
		RetryDelay:   cfg.WorkerRetryDelay,
		StaleRunning: cfg.WorkerStaleAfter,
	})

	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:  cfg.AllowedOrigins,
		TracingEnabled:  observability.Enabled(),
		ProductsHandler: handlers.NewProductsHandler(productService),
		UploadsHandler:  handlers.NewUploadsHandler(uploadService),
		WebhooksHandler: handlers.NewWebhooksHandler(webhookService),
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Blob:         blob,
		Worker:       pool,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Worker.Start(ctx)
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
