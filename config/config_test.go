package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RECEIPTOCR_AZURE_ENDPOINT", "https://example.cognitiveservices.azure.com")
	t.Setenv("RECEIPTOCR_AZURE_API_KEY", "test-key")
}

func TestLoad_MissingEndpoint(t *testing.T) {
	t.Setenv("RECEIPTOCR_AZURE_ENDPOINT", "")
	t.Setenv("RECEIPTOCR_AZURE_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing endpoint")
	}
	if !strings.Contains(err.Error(), "Azure endpoint is required") {
		t.Errorf("Load() error = %v, want endpoint message", err)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("RECEIPTOCR_AZURE_ENDPOINT", "https://example.cognitiveservices.azure.com")
	t.Setenv("RECEIPTOCR_AZURE_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "Azure API key is required") {
		t.Errorf("Load() error = %v, want API key message", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}
	if cfg.Server.MaxUploadSize != 20<<20 {
		t.Errorf("Server.MaxUploadSize = %d, want %d", cfg.Server.MaxUploadSize, 20<<20)
	}
	if cfg.Azure.APIVersion != "2024-11-30" {
		t.Errorf("Azure.APIVersion = %q, want 2024-11-30", cfg.Azure.APIVersion)
	}
	if cfg.Azure.ModelID != "prebuilt-receipt" {
		t.Errorf("Azure.ModelID = %q, want prebuilt-receipt", cfg.Azure.ModelID)
	}
	if cfg.Azure.Locale != "de" {
		t.Errorf("Azure.Locale = %q, want de", cfg.Azure.Locale)
	}
	if cfg.Azure.PollInterval != time.Second {
		t.Errorf("Azure.PollInterval = %s, want 1s", cfg.Azure.PollInterval)
	}
	if cfg.Azure.PollTimeout != 60*time.Second {
		t.Errorf("Azure.PollTimeout = %s, want 60s", cfg.Azure.PollTimeout)
	}
	if cfg.Cache.Type != "memory" {
		t.Errorf("Cache.Type = %q, want memory", cfg.Cache.Type)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %s, want 24h", cfg.Cache.TTL)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.Path != "receipts.db" {
		t.Errorf("History.Path = %q, want receipts.db", cfg.History.Path)
	}
	if cfg.RateLimit.PerIP != 60 {
		t.Errorf("RateLimit.PerIP = %d, want 60", cfg.RateLimit.PerIP)
	}
	if cfg.RateLimit.Azure != 15 {
		t.Errorf("RateLimit.Azure = %d, want 15", cfg.RateLimit.Azure)
	}
	if cfg.Validation.MinConfidence != 0.5 {
		t.Errorf("Validation.MinConfidence = %g, want 0.5", cfg.Validation.MinConfidence)
	}
	if cfg.Validation.MinFieldConfidence != 0.5 {
		t.Errorf("Validation.MinFieldConfidence = %g, want 0.5", cfg.Validation.MinFieldConfidence)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECEIPTOCR_SERVER_PORT", "9090")
	t.Setenv("RECEIPTOCR_SERVER_ENVIRONMENT", "production")
	t.Setenv("RECEIPTOCR_AZURE_LOCALE", "en")
	t.Setenv("RECEIPTOCR_VALIDATION_MIN_CONFIDENCE", "0.7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Environment != "production" {
		t.Errorf("Server.Environment = %q, want production", cfg.Server.Environment)
	}
	if cfg.Azure.Locale != "en" {
		t.Errorf("Azure.Locale = %q, want en", cfg.Azure.Locale)
	}
	if cfg.Validation.MinConfidence != 0.7 {
		t.Errorf("Validation.MinConfidence = %g, want 0.7", cfg.Validation.MinConfidence)
	}
}

func TestLoad_InvalidCacheType(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECEIPTOCR_CACHE_TYPE", "redis")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for unsupported cache type")
	}
	if !strings.Contains(err.Error(), "cache type must be 'memory'") {
		t.Errorf("Load() error = %v, want cache type message", err)
	}
}

func TestLoad_InvalidMinConfidence(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECEIPTOCR_VALIDATION_MIN_CONFIDENCE", "1.5")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for out-of-range min_confidence")
	}
	if !strings.Contains(err.Error(), "min_confidence must be between 0 and 1") {
		t.Errorf("Load() error = %v, want min_confidence message", err)
	}
}

func TestLoad_HistoryDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RECEIPTOCR_HISTORY_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
}
