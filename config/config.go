package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Azure      AzureConfig
	Cache      CacheConfig
	History    HistoryConfig
	RateLimit  RateLimitConfig
	Validation ValidationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadSize  int64    `mapstructure:"max_upload_size"` // bytes
}

// AzureConfig holds Document Intelligence API configuration
type AzureConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	APIKey       string        `mapstructure:"api_key"`
	APIVersion   string        `mapstructure:"api_version"`
	ModelID      string        `mapstructure:"model_id"`
	Locale       string        `mapstructure:"locale"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory"
	TTL  time.Duration `mapstructure:"ttl"`
}

// HistoryConfig holds configuration for the processed-receipt history
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
	Azure int `mapstructure:"azure"`  // outbound requests per minute
}

// ValidationConfig holds the receipt acceptance thresholds
type ValidationConfig struct {
	MinConfidence      float64 `mapstructure:"min_confidence"`
	MinFieldConfidence float64 `mapstructure:"min_field_confidence"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/receiptocr/")

	// Environment variable settings
	v.SetEnvPrefix("RECEIPTOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_size", 20<<20) // 20 MB

	// Azure defaults. Endpoint and key default to empty so the keys are
	// registered and picked up from the environment during Unmarshal.
	v.SetDefault("azure.endpoint", "")
	v.SetDefault("azure.api_key", "")
	v.SetDefault("azure.api_version", "2024-11-30")
	v.SetDefault("azure.model_id", "prebuilt-receipt")
	v.SetDefault("azure.locale", "de")
	v.SetDefault("azure.poll_interval", "1s")
	v.SetDefault("azure.poll_timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "24h")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "receipts.db")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.azure", 15)

	// Validation defaults
	v.SetDefault("validation.min_confidence", 0.5)
	v.SetDefault("validation.min_field_confidence", 0.5)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Azure.Endpoint == "" {
		return fmt.Errorf("Azure endpoint is required (set RECEIPTOCR_AZURE_ENDPOINT)")
	}
	if config.Azure.APIKey == "" {
		return fmt.Errorf("Azure API key is required (set RECEIPTOCR_AZURE_API_KEY)")
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Validation.MinConfidence < 0 || config.Validation.MinConfidence > 1 {
		return fmt.Errorf("validation.min_confidence must be between 0 and 1, got: %g", config.Validation.MinConfidence)
	}

	if config.History.Enabled && config.History.Path == "" {
		return fmt.Errorf("history path is required when history is enabled")
	}

	return nil
}
