package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/maturity-server/api/v1"
	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/catalog"
	"github.com/godilite/maturity-server/internal/config"
	"github.com/godilite/maturity-server/internal/generation"
	handler "github.com/godilite/maturity-server/internal/grpc"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/repository"
	"github.com/godilite/maturity-server/internal/service"
	"github.com/godilite/maturity-server/pkg/cache"
	dbbuilder "github.com/godilite/maturity-server/pkg/database"
	grpcsrv "github.com/godilite/maturity-server/pkg/grpc/server"
	"github.com/godilite/maturity-server/pkg/tracing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const serviceName = "maturity-server"

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      handler.Cacher
	tracer     *tracing.Provider
	grpcServer *grpcsrv.Server
}

// OpenStorage opens the configured database, applies the schema and seeds
// the question catalog.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, *repository.AssessmentRepository, error) {
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver), zap.String("path", cfg.DBPath))

	repo := repository.NewAssessmentRepository(dbPool, cfg.DBDriver)
	if err := repo.Migrate(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("migrate failed: %w", err)
	}

	cat, err := LoadCatalog(cfg.Engine.CatalogPath)
	if err != nil {
		dbPool.Close()
		return nil, nil, err
	}
	if err := repo.SeedCatalog(ctx, cat); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("catalog seed failed: %w", err)
	}
	logger.Info("Catalog seeded",
		zap.Int("categories", len(cat.Categories)),
		zap.Int("questions", len(cat.Questions)),
		zap.Int("improvements", len(cat.Improvements)))

	return dbPool, repo, nil
}

// LoadCatalog reads the catalog at path, or the built-in one when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("built-in catalog: %w", err)
		}
		return cat, nil
	}
	return catalog.Load(path)
}

func newGenerator(cfg *config.Config, logger *zap.Logger) narrative.Generator {
	if cfg.Engine.AnthropicAPIKey == "" {
		logger.Warn("no generation provider configured, narratives will use the fallback")
		return generation.Disabled{}
	}
	opts := []generation.Option{
		generation.WithLogger(logger),
		generation.WithRateLimit(cfg.Engine.GenerationRPM, 1),
	}
	if cfg.Engine.AnthropicModel != "" {
		opts = append(opts, generation.WithModel(cfg.Engine.AnthropicModel))
	}
	gen, err := generation.NewAnthropic(cfg.Engine.AnthropicAPIKey, opts...)
	if err != nil {
		logger.Warn("generation provider unavailable", zap.Error(err))
		return generation.Disabled{}
	}
	return gen
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	tracer, err := tracing.Setup(ctx,
		tracing.WithServiceName(serviceName),
		tracing.WithEndpoint(cfg.OTLPEndpoint),
		tracing.WithInsecure(cfg.OTLPInsecure),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	dbPool, repo, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	var cacheClient handler.Cacher = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cacheClient = rc
			logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		}
	}

	narratives := narrative.NewService(newGenerator(cfg, logger), repo, logger,
		narrative.WithTimeout(cfg.Engine.GenerationTimeout),
		narrative.WithMaxTokens(cfg.Engine.MaxTokens),
		narrative.WithTemperature(cfg.Engine.Temperature),
	)
	engine := benchmark.NewEngine(benchmark.Config{
		MinCohortSupport: cfg.Engine.MinCohortSupport,
		SufficiencySize:  cfg.Engine.SufficiencySize,
	})
	assessments := service.NewAssessmentService(repo, narratives, engine, logger)

	grpcHandlers := handler.NewGRPCHandlers(assessments, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithTracing(tracer.Enabled()),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		_ = cacheClient.Close()
		_ = dbPool.Close()
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.Assessment_ServiceName, func(s *grpc.Server) {
		pb.RegisterAssessmentServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		tracer:     tracer,
		grpcServer: grpcServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.Shutdown(ctx)
}

// Shutdown stops the server, then releases the cache, tracer and database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", zap.Error(err))
		errs = append(errs, fmt.Errorf("tracer: %w", err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else if len(errs) == 0 {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return errors.Join(errs...)
}
