package grpc

import (
	"context"
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type AssessmentService interface {
	Submit(ctx context.Context, in service.SubmitInput) (service.Assessment, error)
	GetAssessment(ctx context.Context, id string) (service.Assessment, error)
	Benchmark(ctx context.Context, id string) (benchmark.Report, error)
	Recommendations(ctx context.Context, id string) ([]domain.PlanEntry, error)
	Narrative(ctx context.Context, id string) (narrative.Response, error)
	InvalidateNarrative(ctx context.Context, id string) error
	Catalog(ctx context.Context) (service.CatalogView, error)
}
