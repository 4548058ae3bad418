package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/godilite/maturity-server/internal/config"
	"github.com/godilite/maturity-server/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:   "test",
		DBDriver: "sqlite3",
		DBPath:   filepath.Join(t.TempDir(), "maturity.db"),
		GRPCPort: 0,
		CacheTTL: time.Minute,
		Engine: config.EngineConfig{
			GenerationTimeout: time.Second,
		},
	}
}

func TestNewApp_WiresAndShutsDown(t *testing.T) {
	ctx := context.Background()

	a, err := NewApp(ctx, testConfig(t), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, cache.Noop{}, a.cache)
	assert.False(t, a.tracer.Enabled())

	a.grpcServer.Start()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(shutdownCtx))
}

func TestNewApp_BadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "read catalog")
}

func TestOpenStorage_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "mysql"

	_, _, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadCatalog_Default(t *testing.T) {
	cat, err := LoadCatalog("")
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Categories)
}
