package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	CacheTTL              time.Duration
	GRPCPort              int
	GRPCReflectionEnabled bool
	OTLPEndpoint          string
	OTLPInsecure          bool
	Engine                EngineConfig
}

// EngineConfig tunes benchmarking, catalog seeding and narrative generation.
type EngineConfig struct {
	MinCohortSupport  int
	SufficiencySize   int
	CatalogPath       string
	AnthropicAPIKey   string
	AnthropicModel    string
	GenerationRPM     int
	GenerationTimeout time.Duration
	MaxTokens         int
	Temperature       float64
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/maturity.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		CacheTTL:              getEnvDuration("CACHE_TTL", 5*time.Minute),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		OTLPEndpoint:          getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:          getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		Engine: EngineConfig{
			MinCohortSupport:  getEnvInt("BENCHMARK_MIN_COHORT", 5),
			SufficiencySize:   getEnvInt("BENCHMARK_SUFFICIENT_SAMPLE", 10),
			CatalogPath:       getEnv("CATALOG_PATH", ""),
			AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:    getEnv("ANTHROPIC_MODEL", ""),
			GenerationRPM:     getEnvInt("GENERATION_RPM", 30),
			GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),
			MaxTokens:         getEnvInt("GENERATION_MAX_TOKENS", 4096),
			Temperature:       getEnvFloat("GENERATION_TEMPERATURE", 0.4),
		},
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
