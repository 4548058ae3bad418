package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/recommend"
	"github.com/godilite/maturity-server/internal/repository/models"
	"github.com/godilite/maturity-server/internal/scoring"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dbTimeout = 5 * time.Second
)

type Option func(*AssessmentService)

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *AssessmentService) { s.now = now }
}

// WithIDGenerator overrides how new result IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *AssessmentService) { s.newID = newID }
}

// AssessmentService orchestrates scoring, benchmarking, recommendations and
// narrative analysis over stored survey results.
type AssessmentService struct {
	storage   AssessmentRepository
	narrative NarrativeAnalyzer
	engine    *benchmark.Engine
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService(storage AssessmentRepository, analyzer NarrativeAnalyzer, engine *benchmark.Engine, logger *zap.Logger, opts ...Option) *AssessmentService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if analyzer == nil {
		panic("narrative analyzer must not be nil")
	}
	if engine == nil {
		engine = benchmark.NewEngine(benchmark.Config{})
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &AssessmentService{
		storage:   storage,
		narrative: analyzer,
		engine:    engine,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storageErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
}

// Catalog returns the categories and the active question set.
func (s *AssessmentService) Catalog(ctx context.Context) (CatalogView, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cats, err := s.storage.ListCategories(dbCtx)
	if err != nil {
		return CatalogView{}, storageErr(err)
	}
	qs, err := s.storage.ListActiveQuestions(dbCtx)
	if err != nil {
		return CatalogView{}, storageErr(err)
	}
	return CatalogView{Categories: cats, Questions: qs}, nil
}

// Submit scores a questionnaire, builds the improvement plan and stores both,
// replacing any earlier submission by the same respondent.
func (s *AssessmentService) Submit(ctx context.Context, in SubmitInput) (Assessment, error) {
	if !in.Respondent.Key().Valid() {
		return Assessment{}, fmt.Errorf("%w: email and company are required", domain.ErrInvalidRespondent)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cats, err := s.storage.ListCategories(dbCtx)
	if err != nil {
		return Assessment{}, storageErr(err)
	}
	qs, err := s.storage.ListActiveQuestions(dbCtx)
	if err != nil {
		return Assessment{}, storageErr(err)
	}
	items, err := s.storage.ListImprovementItems(dbCtx)
	if err != nil {
		return Assessment{}, storageErr(err)
	}

	result, err := scoring.Score(in.Answers, qs, cats)
	if err != nil {
		return Assessment{}, err
	}
	if len(result.Categories) == 0 {
		return Assessment{}, fmt.Errorf("%w: no answered category", domain.ErrMissingScores)
	}

	plan, err := recommend.Build(result.Categories, result.Overall, items)
	if err != nil {
		return Assessment{}, err
	}

	at := s.now()
	saved, err := s.storage.SaveSubmission(dbCtx, models.Submission{
		NewID:      s.newID(),
		Respondent: in.Respondent,
		Answers:    in.Answers,
		Scores:     result.Categories,
		Overall:    result.Overall,
		Plan:       plan,
		At:         at,
	})
	if err != nil {
		s.logger.Error("failed to store submission", zap.Error(err))
		return Assessment{}, storageErr(err)
	}

	if !saved.Created {
		// the stored narrative is already cleared; drop any in-flight generation too
		if err := s.narrative.Invalidate(ctx, saved.ResultID); err != nil {
			s.logger.Warn("narrative invalidation failed", zap.String("result_id", saved.ResultID), zap.Error(err))
		}
	}

	s.logger.Info("assessment stored",
		zap.String("result_id", saved.ResultID),
		zap.Bool("created", saved.Created),
		zap.Float64("overall", result.Overall),
		zap.Int("categories", len(result.Categories)),
		zap.Int("plan_items", len(plan)))

	return Assessment{
		ResultID:   saved.ResultID,
		Created:    saved.Created,
		Respondent: in.Respondent,
		Categories: categoryResults(result.Categories, titles(cats)),
		Overall:    result.Overall,
		Level:      scoring.Level(result.Overall),
		Plan:       plan,
		CreatedAt:  saved.CreatedAt,
		UpdatedAt:  at,
	}, nil
}

// GetAssessment loads a stored result with its scores and plan.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := s.storage.GetResult(dbCtx, id)
	if err != nil {
		return Assessment{}, storageErr(err)
	}
	scores, err := s.storage.GetCategoryScores(dbCtx, id)
	if err != nil {
		return Assessment{}, storageErr(err)
	}
	plan, err := s.storage.GetPlan(dbCtx, id)
	if err != nil {
		return Assessment{}, storageErr(err)
	}
	cats, err := s.storage.ListCategories(dbCtx)
	if err != nil {
		return Assessment{}, storageErr(err)
	}

	return Assessment{
		ResultID:   res.ID,
		Respondent: res.Respondent,
		Categories: categoryResults(scores, titles(cats)),
		Overall:    res.OverallScore,
		Level:      scoring.Level(res.OverallScore),
		Plan:       plan,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}, nil
}

// Benchmark compares a stored result against every other stored result,
// narrowed to the respondent's industry when the cohort is large enough.
func (s *AssessmentService) Benchmark(ctx context.Context, id string) (benchmark.Report, error) {
	a, err := s.GetAssessment(ctx, id)
	if err != nil {
		return benchmark.Report{}, err
	}
	return s.benchmarkFor(ctx, a)
}

func (s *AssessmentService) benchmarkFor(ctx context.Context, a Assessment) (benchmark.Report, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// the engine decides whether the industry filter has enough support,
	// so it always needs the full population
	pop, err := s.storage.ListPopulation(dbCtx, "")
	if err != nil {
		return benchmark.Report{}, storageErr(err)
	}

	rep := s.engine.Compare(benchmark.Request{
		Target:          a.Scores(),
		Industry:        a.Respondent.Industry,
		ExcludeResultID: a.ResultID,
		Population:      pop,
	})
	s.logger.Debug("benchmark computed",
		zap.String("result_id", a.ResultID),
		zap.Int("sample_size", rep.SampleSize),
		zap.Bool("filter_applied", rep.FilterApplied))
	return rep, nil
}

// Recommendations returns the stored plan for a result.
func (s *AssessmentService) Recommendations(ctx context.Context, id string) ([]domain.PlanEntry, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.storage.GetResult(dbCtx, id); err != nil {
		return nil, storageErr(err)
	}
	plan, err := s.storage.GetPlan(dbCtx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return plan, nil
}

// Narrative returns the cached analysis for a result or generates one.
func (s *AssessmentService) Narrative(ctx context.Context, id string) (narrative.Response, error) {
	a, err := s.GetAssessment(ctx, id)
	if err != nil {
		return narrative.Response{}, err
	}
	rep, err := s.benchmarkFor(ctx, a)
	if err != nil {
		s.logger.Warn("benchmark unavailable for narrative", zap.String("result_id", id), zap.Error(err))
		return s.analyze(ctx, a, nil)
	}
	return s.analyze(ctx, a, &rep)
}

func (s *AssessmentService) analyze(ctx context.Context, a Assessment, rep *benchmark.Report) (narrative.Response, error) {
	ts := make(map[string]string, len(a.Categories))
	for _, c := range a.Categories {
		ts[c.Key] = c.Title
	}
	return s.narrative.Analyze(ctx, narrative.Request{
		ResultID:    a.ResultID,
		Scores:      a.Scores(),
		Overall:     a.Overall,
		Titles:      ts,
		Industry:    a.Respondent.Industry,
		CompanySize: a.Respondent.CompanySize,
		Benchmark:   rep,
	})
}

// Report loads a result, then computes its benchmark and narrative
// concurrently off the same score vector.
func (s *AssessmentService) Report(ctx context.Context, id string) (Report, error) {
	a, err := s.GetAssessment(ctx, id)
	if err != nil {
		return Report{}, err
	}

	bench := sync.OnceValues(func() (benchmark.Report, error) {
		return s.benchmarkFor(ctx, a)
	})

	var out Report
	out.Assessment = a

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rep, err := bench()
		if err != nil {
			return err
		}
		out.Benchmark = rep
		return nil
	})
	g.Go(func() error {
		var repPtr *benchmark.Report
		if rep, err := bench(); err == nil {
			repPtr = &rep
		}
		resp, err := s.analyze(gctx, a, repPtr)
		if err != nil {
			return err
		}
		out.Narrative = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return out, nil
}

// InvalidateNarrative clears the stored narrative so the next request
// generates a fresh one.
func (s *AssessmentService) InvalidateNarrative(ctx context.Context, id string) error {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.storage.GetResult(dbCtx, id); err != nil {
		return storageErr(err)
	}
	if err := s.narrative.Invalidate(ctx, id); err != nil {
		return storageErr(err)
	}
	s.logger.Info("narrative invalidated", zap.String("result_id", id))
	return nil
}

func titles(cats []domain.Category) map[string]string {
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		out[c.Key] = c.Title
	}
	return out
}

func categoryResults(scores map[string]float64, titles map[string]string) []CategoryResult {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]CategoryResult, len(keys))
	for i, k := range keys {
		title := titles[k]
		if title == "" {
			title = k
		}
		out[i] = CategoryResult{Key: k, Title: title, Score: scores[k], Level: scoring.Level(scores[k])}
	}
	return out
}
