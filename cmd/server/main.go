package main

import (
	"fmt"
	"log"
	"os"

	"github.com/floriangamillscheg/ReceiptOCRAzure/config"
	httpDelivery "github.com/floriangamillscheg/ReceiptOCRAzure/internal/delivery/http"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/infrastructure/azure"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/infrastructure/cache"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/infrastructure/history"
	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Receipt OCR Gateway v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Model: %s (locale %s)", cfg.Azure.ModelID, cfg.Azure.Locale)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	azureClient := azure.NewClient(azure.ClientConfig{
		Endpoint:          cfg.Azure.Endpoint,
		APIKey:            cfg.Azure.APIKey,
		APIVersion:        cfg.Azure.APIVersion,
		ModelID:           cfg.Azure.ModelID,
		Locale:            cfg.Azure.Locale,
		PollInterval:      cfg.Azure.PollInterval,
		PollTimeout:       cfg.Azure.PollTimeout,
		RequestsPerMinute: cfg.RateLimit.Azure,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		azureClient.SetDebug(true)
		log.Printf("Azure client debug mode enabled")
	}

	log.Printf("Document Intelligence configured: %s (key: %s...)", cfg.Azure.Endpoint, cfg.Azure.APIKey[:min(8, len(cfg.Azure.APIKey))])

	var historyStore domain.HistoryRepository
	if cfg.History.Enabled {
		store, err := history.NewBoltStore(cfg.History.Path)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer store.Close()
		historyStore = store
		log.Printf("History database: %s", cfg.History.Path)
	} else {
		log.Printf("History disabled")
	}

	// Initialize usecase layer
	receiptService := usecase.NewReceiptService(
		azureClient,
		memoryCache,
		historyStore,
		usecase.ReceiptServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			MinConfidence:      cfg.Validation.MinConfidence,
			MinFieldConfidence: cfg.Validation.MinFieldConfidence,
			MaxUploadBytes:     cfg.Server.MaxUploadSize,
		},
	)

	log.Printf("Validation: min confidence=%.2f, min field confidence=%.2f",
		cfg.Validation.MinConfidence,
		cfg.Validation.MinFieldConfidence)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(receiptService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
