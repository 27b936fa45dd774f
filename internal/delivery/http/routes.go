package http

import (
	"github.com/floriangamillscheg/ReceiptOCRAzure/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	if cfg.Server.MaxUploadSize > 0 {
		router.MaxMultipartMemory = cfg.Server.MaxUploadSize
	}

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// v1: legacy contract
	v1 := router.Group("/api/v1")
	{
		receipts := v1.Group("/receipts")
		{
			receipts.POST("/process", handler.ProcessReceiptV1)
			receipts.GET("/history", handler.ListHistory)
			receipts.GET("/history/:id", handler.GetHistoryEntry)
		}
	}

	// v2: structured errors, departure-date fallback
	v2 := router.Group("/api/v2")
	{
		v2.POST("/receipts/process", handler.ProcessReceiptV2)
	}

	// v3: v2 plus tax reconciliation and UID
	v3 := router.Group("/api/v3")
	{
		v3.POST("/receipts/process", handler.ProcessReceiptV3)
	}

	return router
}
