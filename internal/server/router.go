package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/catalog-backend/internal/handlers"
)

type RouterConfig struct {
	AllowedOrigins  []string
	TracingEnabled  bool
	ProductsHandler *handlers.ProductsHandler
	UploadsHandler  *handlers.UploadsHandler
	WebhooksHandler *handlers.WebhooksHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("catalog-backend"))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Products
		api.GET("/products", cfg.ProductsHandler.List)
		api.POST("/products", cfg.ProductsHandler.Create)
		api.DELETE("/products", cfg.ProductsHandler.DeleteAll)
		api.GET("/products/:id", cfg.ProductsHandler.Get)
		api.PUT("/products/:id", cfg.ProductsHandler.Update)
		api.PATCH("/products/:id", cfg.ProductsHandler.Update)
		api.DELETE("/products/:id", cfg.ProductsHandler.Delete)
		// Bulk ingestion
		api.POST("/uploads", cfg.UploadsHandler.Upload)
		api.GET("/uploads", cfg.UploadsHandler.ListJobs)
		api.GET("/uploads/:id", cfg.UploadsHandler.GetJob)
		// Webhooks
		api.GET("/webhooks", cfg.WebhooksHandler.List)
		api.POST("/webhooks", cfg.WebhooksHandler.Create)
		api.GET("/webhooks/:id", cfg.WebhooksHandler.Get)
		api.PUT("/webhooks/:id", cfg.WebhooksHandler.Update)
		api.PATCH("/webhooks/:id", cfg.WebhooksHandler.Update)
		api.DELETE("/webhooks/:id", cfg.WebhooksHandler.Delete)
		api.GET("/webhooks/:id/deliveries", cfg.WebhooksHandler.ListDeliveries)
		api.POST("/webhooks/:id/test", cfg.WebhooksHandler.Test)
	}

	return router
}
