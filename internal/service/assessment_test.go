package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/catalog"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/repository/models"
	"github.com/godilite/maturity-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

// catalogRepo returns a mock repository whose catalog reads are served from
// the embedded default catalog.
func catalogRepo(t *testing.T) *mocks.MockAssessmentRepository {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return &mocks.MockAssessmentRepository{
		ListCategoriesFunc: func(ctx context.Context) ([]domain.Category, error) {
			return cat.Categories, nil
		},
		ListActiveQuestionsFunc: func(ctx context.Context) ([]domain.Question, error) {
			return cat.ActiveQuestions(), nil
		},
		ListImprovementItemsFunc: func(ctx context.Context) ([]domain.ImprovementItem, error) {
			return cat.Improvements, nil
		},
	}
}

func newTestService(repo AssessmentRepository, analyzer NarrativeAnalyzer) *AssessmentService {
	return NewAssessmentService(repo, analyzer, benchmark.NewEngine(benchmark.Config{}), zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "id-1" }))
}

func respondent() domain.Respondent {
	return domain.Respondent{Name: "Ada", Email: "ada@acme.test", Company: "Acme", Industry: "Retail", CompanySize: "50-249"}
}

// TestNewAssessmentService tests the constructor
func TestNewAssessmentService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		repo := &mocks.MockAssessmentRepository{}
		analyzer := &mocks.MockNarrativeAnalyzer{}

		svc := NewAssessmentService(repo, analyzer, nil, zap.NewNop())

		assert.NotNil(t, svc)
		assert.Equal(t, repo, svc.storage)
		assert.NotNil(t, svc.engine)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAssessmentService(nil, &mocks.MockNarrativeAnalyzer{}, nil, zap.NewNop())
		})
	})

	t.Run("nil analyzer panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAssessmentService(&mocks.MockAssessmentRepository{}, nil, nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewAssessmentService(&mocks.MockAssessmentRepository{}, &mocks.MockNarrativeAnalyzer{}, nil, nil)
		assert.NotNil(t, svc.logger)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("scores, plans and stores", func(t *testing.T) {
		repo := catalogRepo(t)
		var saved models.Submission
		repo.SaveSubmissionFunc = func(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
			saved = s
			return models.SubmissionResult{ResultID: s.NewID, Created: true, CreatedAt: s.At}, nil
		}
		var invalidated atomic.Int32
		analyzer := &mocks.MockNarrativeAnalyzer{
			InvalidateFunc: func(ctx context.Context, id string) error {
				invalidated.Add(1)
				return nil
			},
		}
		svc := newTestService(repo, analyzer)

		a, err := svc.Submit(ctx, SubmitInput{
			Respondent: respondent(),
			Answers:    map[int64]int{101: 2, 102: 4},
		})

		require.NoError(t, err)
		assert.Equal(t, "id-1", a.ResultID)
		assert.True(t, a.Created)
		require.Len(t, a.Categories, 1)
		assert.Equal(t, "planning", a.Categories[0].Key)
		assert.InDelta(t, 2.8, a.Categories[0].Score, 1e-9)
		assert.InDelta(t, 2.8, a.Overall, 1e-9)
		assert.Equal(t, "Defined", a.Level)
		require.NotEmpty(t, a.Plan)
		assert.Equal(t, domain.PriorityHigh, a.Plan[0].Priority)

		assert.Equal(t, "id-1", saved.NewID)
		assert.Equal(t, fixedNow, saved.At)
		assert.Equal(t, a.Plan, saved.Plan)
		assert.Zero(t, invalidated.Load(), "a new result has nothing to invalidate")
	})

	t.Run("resubmission invalidates the narrative", func(t *testing.T) {
		repo := catalogRepo(t)
		repo.SaveSubmissionFunc = func(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
			return models.SubmissionResult{ResultID: "existing", Created: false}, nil
		}
		var invalidated string
		analyzer := &mocks.MockNarrativeAnalyzer{
			InvalidateFunc: func(ctx context.Context, id string) error {
				invalidated = id
				return errors.New("ignored")
			},
		}

		a, err := newTestService(repo, analyzer).Submit(ctx, SubmitInput{Respondent: respondent(), Answers: map[int64]int{101: 5}})

		require.NoError(t, err)
		assert.Equal(t, "existing", a.ResultID)
		assert.False(t, a.Created)
		assert.Equal(t, "existing", invalidated)
	})

	t.Run("invalid respondent", func(t *testing.T) {
		repo := &mocks.MockAssessmentRepository{}
		in := SubmitInput{Respondent: domain.Respondent{Email: "  ", Company: "Acme"}, Answers: map[int64]int{101: 3}}

		_, err := newTestService(repo, &mocks.MockNarrativeAnalyzer{}).Submit(ctx, in)

		assert.ErrorIs(t, err, domain.ErrInvalidRespondent)
	})

	t.Run("out of range answer is rejected before storage", func(t *testing.T) {
		repo := catalogRepo(t)
		repo.SaveSubmissionFunc = func(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
			t.Fatal("SaveSubmission must not be called")
			return models.SubmissionResult{}, nil
		}

		_, err := newTestService(repo, &mocks.MockNarrativeAnalyzer{}).Submit(ctx, SubmitInput{
			Respondent: respondent(),
			Answers:    map[int64]int{101: 3, 102: 6},
		})

		assert.ErrorIs(t, err, domain.ErrInvalidAnswerValue)
	})

	t.Run("no answered category", func(t *testing.T) {
		repo := catalogRepo(t)

		_, err := newTestService(repo, &mocks.MockNarrativeAnalyzer{}).Submit(ctx, SubmitInput{
			Respondent: respondent(),
			Answers:    map[int64]int{9999: 3},
		})

		assert.ErrorIs(t, err, domain.ErrMissingScores)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := catalogRepo(t)
		repo.SaveSubmissionFunc = func(ctx context.Context, s models.Submission) (models.SubmissionResult, error) {
			return models.SubmissionResult{}, errors.New("database locked")
		}

		_, err := newTestService(repo, &mocks.MockNarrativeAnalyzer{}).Submit(ctx, SubmitInput{
			Respondent: respondent(),
			Answers:    map[int64]int{101: 3},
		})

		assert.ErrorIs(t, err, domain.ErrStorageFailure)
		assert.Contains(t, err.Error(), "database locked")
	})

	t.Run("catalog read failure", func(t *testing.T) {
		repo := catalogRepo(t)
		repo.ListActiveQuestionsFunc = func(ctx context.Context) ([]domain.Question, error) {
			return nil, errors.New("timeout")
		}

		_, err := newTestService(repo, &mocks.MockNarrativeAnalyzer{}).Submit(ctx, SubmitInput{
			Respondent: respondent(),
			Answers:    map[int64]int{101: 3},
		})

		assert.ErrorIs(t, err, domain.ErrStorageFailure)
	})
}

// storedRepo serves one stored result "r-1" on top of the default catalog.
func storedRepo(t *testing.T, population []domain.PopulationScore) *mocks.MockAssessmentRepository {
	repo := catalogRepo(t)
	repo.GetResultFunc = func(ctx context.Context, id string) (domain.SurveyResult, error) {
		if id != "r-1" {
			return domain.SurveyResult{}, domain.ErrNotFound
		}
		return domain.SurveyResult{ID: "r-1", Respondent: respondent(), OverallScore: 3.0, CreatedAt: fixedNow}, nil
	}
	repo.GetCategoryScoresFunc = func(ctx context.Context, id string) (map[string]float64, error) {
		return map[string]float64{"planning": 2.0, "logistics": 4.0}, nil
	}
	repo.GetPlanFunc = func(ctx context.Context, id string) ([]domain.PlanEntry, error) {
		return []domain.PlanEntry{{Item: domain.ImprovementItem{ID: "planning-forecast"}, Priority: domain.PriorityHigh}}, nil
	}
	repo.ListPopulationFunc = func(ctx context.Context, industry string) ([]domain.PopulationScore, error) {
		assert.Empty(t, industry, "the engine needs the unfiltered population")
		return population, nil
	}
	return repo
}

func TestGetAssessment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(storedRepo(t, nil), &mocks.MockNarrativeAnalyzer{})

	t.Run("found", func(t *testing.T) {
		a, err := svc.GetAssessment(ctx, "r-1")

		require.NoError(t, err)
		require.Len(t, a.Categories, 2)
		assert.Equal(t, "logistics", a.Categories[0].Key)
		assert.Equal(t, "Logistics & Distribution", a.Categories[0].Title)
		assert.Equal(t, "Managed", a.Categories[0].Level)
		assert.Len(t, a.Plan, 1)
	})

	t.Run("not found is not a storage failure", func(t *testing.T) {
		_, err := svc.GetAssessment(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrStorageFailure)
	})
}

func TestBenchmark(t *testing.T) {
	population := []domain.PopulationScore{
		{ResultID: "r-1", Industry: "Retail", CategoryKey: "planning", Score: 2.0},
		{ResultID: "a", Industry: "Retail", CategoryKey: "planning", Score: 1.0},
		{ResultID: "b", Industry: "Pharma", CategoryKey: "planning", Score: 3.0},
		{ResultID: "c", Industry: "Pharma", CategoryKey: "planning", Score: 4.0},
	}
	svc := newTestService(storedRepo(t, population), &mocks.MockNarrativeAnalyzer{})

	rep, err := svc.Benchmark(context.Background(), "r-1")

	require.NoError(t, err)
	assert.Equal(t, 3, rep.SampleSize, "the respondent's own result is excluded")
	assert.False(t, rep.FilterApplied)
	assert.False(t, rep.Sufficient)
	require.Len(t, rep.Categories, 2)
	planning := rep.Categories[1]
	assert.Equal(t, "planning", planning.CategoryKey)
	require.NotNil(t, planning.Percentile)
	assert.InDelta(t, 100.0/3.0, *planning.Percentile, 1e-9)
}

func TestNarrative(t *testing.T) {
	population := []domain.PopulationScore{{ResultID: "a", Industry: "Retail", CategoryKey: "planning", Score: 3.0}}
	var got narrative.Request
	analyzer := &mocks.MockNarrativeAnalyzer{
		AnalyzeFunc: func(ctx context.Context, req narrative.Request) (narrative.Response, error) {
			got = req
			return narrative.Response{Source: narrative.SourceGenerated}, nil
		},
	}
	svc := newTestService(storedRepo(t, population), analyzer)

	resp, err := svc.Narrative(context.Background(), "r-1")

	require.NoError(t, err)
	assert.Equal(t, narrative.SourceGenerated, resp.Source)
	assert.Equal(t, "r-1", got.ResultID)
	assert.Equal(t, "Retail", got.Industry)
	assert.Equal(t, "50-249", got.CompanySize)
	assert.Equal(t, "Demand & Supply Planning", got.Titles["planning"])
	require.NotNil(t, got.Benchmark)
	assert.Equal(t, 1, got.Benchmark.SampleSize)

	t.Run("benchmark failure still analyzes", func(t *testing.T) {
		repo := storedRepo(t, nil)
		repo.ListPopulationFunc = func(ctx context.Context, industry string) ([]domain.PopulationScore, error) {
			return nil, errors.New("scan failed")
		}

		_, err := newTestService(repo, analyzer).Narrative(context.Background(), "r-1")

		require.NoError(t, err)
		assert.Nil(t, got.Benchmark)
	})
}

func TestReport(t *testing.T) {
	analyzer := &mocks.MockNarrativeAnalyzer{
		AnalyzeFunc: func(ctx context.Context, req narrative.Request) (narrative.Response, error) {
			return narrative.Response{Source: narrative.SourceFallback, IsFallback: true}, nil
		},
	}
	svc := newTestService(storedRepo(t, nil), analyzer)

	rep, err := svc.Report(context.Background(), "r-1")

	require.NoError(t, err)
	assert.Equal(t, "r-1", rep.Assessment.ResultID)
	assert.True(t, rep.Benchmark.NoData)
	assert.True(t, rep.Narrative.IsFallback)

	t.Run("narrative error fails the report", func(t *testing.T) {
		failing := &mocks.MockNarrativeAnalyzer{
			AnalyzeFunc: func(ctx context.Context, req narrative.Request) (narrative.Response, error) {
				return narrative.Response{}, domain.ErrMissingScores
			},
		}

		_, err := newTestService(storedRepo(t, nil), failing).Report(context.Background(), "r-1")

		assert.ErrorIs(t, err, domain.ErrMissingScores)
	})
}

func TestRecommendations(t *testing.T) {
	svc := newTestService(storedRepo(t, nil), &mocks.MockNarrativeAnalyzer{})

	plan, err := svc.Recommendations(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Len(t, plan, 1)

	_, err = svc.Recommendations(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvalidateNarrative(t *testing.T) {
	var cleared []string
	analyzer := &mocks.MockNarrativeAnalyzer{
		InvalidateFunc: func(ctx context.Context, id string) error {
			cleared = append(cleared, id)
			return nil
		},
	}
	svc := newTestService(storedRepo(t, nil), analyzer)

	require.NoError(t, svc.InvalidateNarrative(context.Background(), "r-1"))
	assert.Equal(t, []string{"r-1"}, cleared)

	err := svc.InvalidateNarrative(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, cleared, 1)
}

func TestCatalog(t *testing.T) {
	svc := newTestService(catalogRepo(t), &mocks.MockNarrativeAnalyzer{})

	view, err := svc.Catalog(context.Background())

	require.NoError(t, err)
	assert.Len(t, view.Categories, 6)
	for _, q := range view.Questions {
		assert.True(t, q.Active)
	}
}
