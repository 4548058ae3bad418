package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pb "github.com/godilite/maturity-server/api/v1"
	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCacheDuration = 5 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	// narrative generation has its own deadline inside the narrative service
	narrativeGRPCTimeout = 90 * time.Second
)

type CacheKeyType string

const (
	cacheKeyBenchmark  CacheKeyType = "grpc:benchmark"
	cacheKeyCategories CacheKeyType = "grpc:categories"
)

type GRPCHandlers struct {
	pb.UnimplementedAssessmentServer
	assessments AssessmentService
	cache       Cacher
	logger      *zap.Logger
	sfGroup     singleflight.Group
	evictions   *evictionLog
	cacheTTL    time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(assessments AssessmentService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if assessments == nil {
		panic("nil AssessmentService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		assessments: assessments,
		cache:       cache,
		logger:      logger.Named("grpc-handler"),
		evictions:   newEvictionLog(),
		cacheTTL:    ttl,
	}
}

func cacheKey(prefix CacheKeyType, parts ...string) string {
	if len(parts) == 0 {
		return string(prefix)
	}
	return fmt.Sprintf("%s:%s", prefix, strings.Join(parts, ":"))
}

func resultID(req *pb.ResultRequest) (string, error) {
	id := strings.TrimSpace(req.GetResultId())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "result_id is required")
	}
	return id, nil
}

func parseSubmission(req *pb.SubmitAssessmentRequest) (service.SubmitInput, error) {
	r := req.GetRespondent()
	if r == nil {
		return service.SubmitInput{}, status.Error(codes.InvalidArgument, "respondent is required")
	}
	if len(req.GetAnswers()) == 0 {
		return service.SubmitInput{}, status.Error(codes.InvalidArgument, "at least one answer is required")
	}

	answers := make(map[int64]int, len(req.GetAnswers()))
	for _, a := range req.GetAnswers() {
		if a == nil {
			continue
		}
		if _, dup := answers[a.QuestionId]; dup {
			return service.SubmitInput{}, status.Errorf(codes.InvalidArgument, "question %d answered more than once", a.QuestionId)
		}
		answers[a.QuestionId] = int(a.Value)
	}

	return service.SubmitInput{
		Respondent: domain.Respondent{
			Name:        strings.TrimSpace(r.GetName()),
			Email:       r.GetEmail(),
			Company:     r.GetCompany(),
			Industry:    strings.TrimSpace(r.GetIndustry()),
			CompanySize: strings.TrimSpace(r.GetCompanySize()),
		},
		Answers: answers,
	}, nil
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAnswerValue),
		errors.Is(err, domain.ErrInvalidRespondent),
		errors.Is(err, domain.ErrMissingScores):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Info("result not found", zap.String("op", op))
		return status.Error(codes.NotFound, "assessment result not found")
	case errors.Is(err, domain.ErrMissingCatalog):
		s.logger.Error("catalog not seeded", zap.String("op", op))
		return status.Error(codes.FailedPrecondition, "question catalog is empty")
	case errors.Is(err, domain.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) SubmitAssessment(ctx context.Context, req *pb.SubmitAssessmentRequest) (*pb.AssessmentResponse, error) {
	in, err := parseSubmission(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	a, err := s.assessments.Submit(ctx, in)
	if err != nil {
		return nil, s.handleError(ctx, "SubmitAssessment", err)
	}

	if !a.Created {
		if err := s.evictions.evict(ctx, s.cache, cacheKey(cacheKeyBenchmark, a.ResultID)); err != nil {
			s.logger.Warn("failed to evict benchmark", zap.String("result_id", a.ResultID), zap.Error(err))
		}
	}
	return toAssessmentResponse(a), nil
}

func (s *GRPCHandlers) GetAssessment(ctx context.Context, req *pb.ResultRequest) (*pb.AssessmentResponse, error) {
	id, err := resultID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	a, err := s.assessments.GetAssessment(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "GetAssessment", err)
	}
	return toAssessmentResponse(a), nil
}

func (s *GRPCHandlers) GetBenchmark(ctx context.Context, req *pb.ResultRequest) (*pb.BenchmarkResponse, error) {
	id, err := resultID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	rep, err := FindAndCache(ctx, s.cache, &s.sfGroup, s.evictions, cacheKey(cacheKeyBenchmark, id), s.cacheTTL, s.logger, func(fetchCtx context.Context) (benchmark.Report, error) {
		return s.assessments.Benchmark(fetchCtx, id)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetBenchmark", err)
	}
	return toBenchmarkResponse(id, rep), nil
}

func (s *GRPCHandlers) GetRecommendations(ctx context.Context, req *pb.ResultRequest) (*pb.RecommendationsResponse, error) {
	id, err := resultID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	plan, err := s.assessments.Recommendations(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "GetRecommendations", err)
	}
	return &pb.RecommendationsResponse{ResultId: id, Items: toPlanItems(plan)}, nil
}

func (s *GRPCHandlers) GetNarrative(ctx context.Context, req *pb.ResultRequest) (*pb.NarrativeResponse, error) {
	id, err := resultID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, narrativeGRPCTimeout)
	defer cancel()

	resp, err := s.assessments.Narrative(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "GetNarrative", err)
	}
	return toNarrativeResponse(id, resp), nil
}

func (s *GRPCHandlers) InvalidateNarrative(ctx context.Context, req *pb.ResultRequest) (*pb.InvalidateNarrativeResponse, error) {
	id, err := resultID(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.assessments.InvalidateNarrative(ctx, id); err != nil {
		return nil, s.handleError(ctx, "InvalidateNarrative", err)
	}
	return &pb.InvalidateNarrativeResponse{ResultId: id, Invalidated: true}, nil
}

func (s *GRPCHandlers) ListCategories(ctx context.Context, _ *pb.ListCategoriesRequest) (*pb.ListCategoriesResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := FindAndCache(ctx, s.cache, &s.sfGroup, s.evictions, cacheKey(cacheKeyCategories), s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.CatalogView, error) {
		return s.assessments.Catalog(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListCategories", err)
	}
	return toCategoriesResponse(view), nil
}
