package mocks

import (
	"context"
	"errors"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/service"
)

// MockAssessmentService is a mock implementation of the AssessmentService
// interface for testing the handler layer.
type MockAssessmentService struct {
	SubmitFunc              func(ctx context.Context, in service.SubmitInput) (service.Assessment, error)
	GetAssessmentFunc       func(ctx context.Context, id string) (service.Assessment, error)
	BenchmarkFunc           func(ctx context.Context, id string) (benchmark.Report, error)
	RecommendationsFunc     func(ctx context.Context, id string) ([]domain.PlanEntry, error)
	NarrativeFunc           func(ctx context.Context, id string) (narrative.Response, error)
	InvalidateNarrativeFunc func(ctx context.Context, id string) error
	CatalogFunc             func(ctx context.Context) (service.CatalogView, error)
}

func (m *MockAssessmentService) Submit(ctx context.Context, in service.SubmitInput) (service.Assessment, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, in)
	}
	return service.Assessment{}, errors.New("SubmitFunc not implemented")
}

func (m *MockAssessmentService) GetAssessment(ctx context.Context, id string) (service.Assessment, error) {
	if m.GetAssessmentFunc != nil {
		return m.GetAssessmentFunc(ctx, id)
	}
	return service.Assessment{}, errors.New("GetAssessmentFunc not implemented")
}

func (m *MockAssessmentService) Benchmark(ctx context.Context, id string) (benchmark.Report, error) {
	if m.BenchmarkFunc != nil {
		return m.BenchmarkFunc(ctx, id)
	}
	return benchmark.Report{}, errors.New("BenchmarkFunc not implemented")
}

func (m *MockAssessmentService) Recommendations(ctx context.Context, id string) ([]domain.PlanEntry, error) {
	if m.RecommendationsFunc != nil {
		return m.RecommendationsFunc(ctx, id)
	}
	return nil, errors.New("RecommendationsFunc not implemented")
}

func (m *MockAssessmentService) Narrative(ctx context.Context, id string) (narrative.Response, error) {
	if m.NarrativeFunc != nil {
		return m.NarrativeFunc(ctx, id)
	}
	return narrative.Response{}, errors.New("NarrativeFunc not implemented")
}

func (m *MockAssessmentService) InvalidateNarrative(ctx context.Context, id string) error {
	if m.InvalidateNarrativeFunc != nil {
		return m.InvalidateNarrativeFunc(ctx, id)
	}
	return errors.New("InvalidateNarrativeFunc not implemented")
}

func (m *MockAssessmentService) Catalog(ctx context.Context) (service.CatalogView, error) {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(ctx)
	}
	return service.CatalogView{}, errors.New("CatalogFunc not implemented")
}
