package service

import (
	"context"

	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/repository/models"
)

// AssessmentRepository defines the storage operations the service needs.
type AssessmentRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveQuestions(ctx context.Context) ([]domain.Question, error)
	ListImprovementItems(ctx context.Context) ([]domain.ImprovementItem, error)
	SaveSubmission(ctx context.Context, s models.Submission) (models.SubmissionResult, error)
	GetResult(ctx context.Context, id string) (domain.SurveyResult, error)
	GetCategoryScores(ctx context.Context, id string) (map[string]float64, error)
	GetPlan(ctx context.Context, id string) ([]domain.PlanEntry, error)
	ListPopulation(ctx context.Context, industry string) ([]domain.PopulationScore, error)
}

// NarrativeAnalyzer is satisfied by *narrative.Service.
type NarrativeAnalyzer interface {
	Analyze(ctx context.Context, req narrative.Request) (narrative.Response, error)
	Invalidate(ctx context.Context, resultID string) error
}
