package mocks

import (
	"context"
	"errors"

	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/repository/models"
)

// MockAssessmentRepository is a mock implementation of the AssessmentRepository
// interface for testing the service layer.
type MockAssessmentRepository struct {
	ListCategoriesFunc       func(ctx context.Context) ([]domain.Category, error)
	ListActiveQuestionsFunc  func(ctx context.Context) ([]domain.Question, error)
	ListImprovementItemsFunc func(ctx context.Context) ([]domain.ImprovementItem, error)
	SaveSubmissionFunc       func(ctx context.Context, s models.Submission) (models.SubmissionResult, error)
	GetResultFunc            func(ctx context.Context, id string) (domain.SurveyResult, error)
	GetCategoryScoresFunc    func(ctx context.Context, id string) (map[string]float64, error)
	GetPlanFunc              func(ctx context.Context, id string) ([]domain.PlanEntry, error)
	ListPopulationFunc       func(ctx context.Context, industry string) ([]domain.PopulationScore, error)
}

func (m *MockAssessmentRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, errors.New("ListCategoriesFunc not implemented")
}

func (m *MockAssessmentRepository) ListActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if m.ListActiveQuestionsFunc != nil {
		return m.ListActiveQuestionsFunc(ctx)
	}
	return nil, errors.New("ListActiveQuestionsFunc not implemented")
}

func (m *MockAssessmentRepository) ListImprovementItems(ctx context.Context) ([]domain.ImprovementItem, error) {
	if m.ListImprovementItemsFunc != nil {
		return m.ListImprovementItemsFunc(ctx)
	}
	return nil, errors.New("ListImprovementItemsFunc not implemented")
}

func (m *MockAssessmentRepository) SaveSubmission(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
	if m.SaveSubmissionFunc != nil {
		return m.SaveSubmissionFunc(ctx, s)
	}
	return models.SubmissionResult{}, errors.New("SaveSubmissionFunc not implemented")
}

func (m *MockAssessmentRepository) GetResult(ctx context.Context, id string) (domain.SurveyResult, error) {
	if m.GetResultFunc != nil {
		return m.GetResultFunc(ctx, id)
	}
	return domain.SurveyResult{}, errors.New("GetResultFunc not implemented")
}

func (m *MockAssessmentRepository) GetCategoryScores(ctx context.Context, id string) (map[string]float64, error) {
	if m.GetCategoryScoresFunc != nil {
		return m.GetCategoryScoresFunc(ctx, id)
	}
	return nil, errors.New("GetCategoryScoresFunc not implemented")
}

func (m *MockAssessmentRepository) GetPlan(ctx context.Context, id string) ([]domain.PlanEntry, error) {
	if m.GetPlanFunc != nil {
		return m.GetPlanFunc(ctx, id)
	}
	return nil, errors.New("GetPlanFunc not implemented")
}

func (m *MockAssessmentRepository) ListPopulation(ctx context.Context, industry string) ([]domain.PopulationScore, error) {
	if m.ListPopulationFunc != nil {
		return m.ListPopulationFunc(ctx, industry)
	}
	return nil, errors.New("ListPopulationFunc not implemented")
}

// MockNarrativeAnalyzer is a function-based mock of the NarrativeAnalyzer interface.
type MockNarrativeAnalyzer struct {
	AnalyzeFunc    func(ctx context.Context, req narrative.Request) (narrative.Response, error)
	InvalidateFunc func(ctx context.Context, resultID string) error
}

func (m *MockNarrativeAnalyzer) Analyze(ctx context.Context, req narrative.Request) (narrative.Response, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return narrative.Response{}, errors.New("AnalyzeFunc not implemented")
}

func (m *MockNarrativeAnalyzer) Invalidate(ctx context.Context, resultID string) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, resultID)
	}
	return nil
}
