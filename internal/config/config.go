package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is read once at startup and
// never mutated during request handling.
type Config struct {
	// Server configuration
	Host         string
	Port         int
	MaxWorkers   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Model service configuration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIMaxTokens int
	OpenAITimeout   time.Duration

	// Upload configuration
	MaxUploadSize     int64
	AllowedExtensions []string

	// Rasterization configuration
	PdftoppmPath      string
	RasterDPI         int
	MaxImageDimension int
	JPEGQuality       int

	// CORS configuration
	CORSAllowedOrigins []string

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads the application configuration from environment variables,
// reading a .env file first when one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment variables.")
	}

	cfg := &Config{
		Host:         getEnvString("HOST", "0.0.0.0"),
		Port:         getEnvInt("PORT", 8100),
		MaxWorkers:   getEnvInt("MAX_WORKERS", 4),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 300)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 300)) * time.Second,

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:     getEnvString("OPENAI_MODEL", "gpt-4o"),
		OpenAIMaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 4096),
		OpenAITimeout:   time.Duration(getEnvInt("OPENAI_TIMEOUT", 120)) * time.Second,

		MaxUploadSize:     getEnvInt64("MAX_UPLOAD_SIZE", 100*1024*1024),
		AllowedExtensions: getEnvStringSlice("ALLOWED_EXTENSIONS", []string{"pdf"}),

		PdftoppmPath:      getEnvString("PDFTOPPM_PATH", "pdftoppm"),
		RasterDPI:         getEnvInt("RASTER_DPI", 200),
		MaxImageDimension: getEnvInt("MAX_IMAGE_DIMENSION", 2048),
		JPEGQuality:       getEnvInt("JPEG_QUALITY", 85),

		CORSAllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", nil),

		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "json"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig checks critical values; a missing credential is a warning
// rather than a startup failure so the health endpoint can report it.
func validateConfig(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE: %d", cfg.MaxUploadSize)
	}
	if len(cfg.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS must not be empty")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: No OpenAI API key provided. Extraction requests will fail.")
	}
	return nil
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvInt64 gets a 64-bit integer from an environment variable with a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
