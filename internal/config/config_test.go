package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "DB_DRIVER", "GRPC_PORT", "REDIS_ADDR", "ANTHROPIC_API_KEY", "GENERATION_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 5, cfg.Engine.MinCohortSupport)
	assert.Equal(t, 10, cfg.Engine.SufficiencySize)
	assert.Equal(t, 60*time.Second, cfg.Engine.GenerationTimeout)
	assert.Empty(t, cfg.Engine.AnthropicAPIKey)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("BENCHMARK_MIN_COHORT", "3")
	t.Setenv("GENERATION_TIMEOUT", "15s")
	t.Setenv("GENERATION_TEMPERATURE", "0.7")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := LoadFromEnv()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
	assert.Equal(t, 3, cfg.Engine.MinCohortSupport)
	assert.Equal(t, 15*time.Second, cfg.Engine.GenerationTimeout)
	assert.InDelta(t, 0.7, cfg.Engine.Temperature, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL, "invalid values fall back")
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(&Config{AppEnv: env})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
