package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string

	AzureEndpoint   string
	AzureKey        string
	AzureLanguage   string
	OCRPollInterval time.Duration
	OCRMaxAttempts  int

	MistralAPIKey  string
	MistralModel   string
	MistralTimeout time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	MemoryCacheTTL time.Duration
	RateLimitMax   int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// HasVisionCredentials reports whether the OCR provider can be configured.
func (c Config) HasVisionCredentials() bool {
	return c.AzureEndpoint != "" && c.AzureKey != ""
}

// HasCloudinaryCredentials reports whether document archiving can be configured.
func (c Config) HasCloudinaryCredentials() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LIBELIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Libel-IA API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("azure.language", "es")
	v.SetDefault("ocr.poll_interval", "1200ms")
	v.SetDefault("ocr.max_attempts", 12)
	v.SetDefault("mistral.model", "mistral-large-latest")
	v.SetDefault("mistral.timeout", "2m")
	v.SetDefault("cloudinary.folder", "libelia/documentos")
	v.SetDefault("memory.cache_ttl", "5m")
	v.SetDefault("rate_limit_max", 30)

	pollInterval, err := parseDuration(v.GetString("ocr.poll_interval"), "1200ms")
	if err != nil {
		return Config{}, fmt.Errorf("invalid ocr poll interval: %w", err)
	}

	mistralTimeout, err := parseDuration(v.GetString("mistral.timeout"), "2m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid mistral timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("memory.cache_ttl"), "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid memory cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		AzureEndpoint:       strings.TrimRight(v.GetString("azure.endpoint"), "/"),
		AzureKey:            v.GetString("azure.key"),
		AzureLanguage:       v.GetString("azure.language"),
		OCRPollInterval:     pollInterval,
		OCRMaxAttempts:      v.GetInt("ocr.max_attempts"),
		MistralAPIKey:       v.GetString("mistral.api_key"),
		MistralModel:        v.GetString("mistral.model"),
		MistralTimeout:      mistralTimeout,
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		MemoryCacheTTL:      cacheTTL,
		RateLimitMax:        v.GetInt("rate_limit_max"),
	}

	if cfg.OCRMaxAttempts <= 0 {
		cfg.OCRMaxAttempts = 12
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}

	return time.ParseDuration(value)
}
