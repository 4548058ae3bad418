//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	pb "github.com/godilite/maturity-server/api/v1"
	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/catalog"
	handler "github.com/godilite/maturity-server/internal/grpc"
	"github.com/godilite/maturity-server/internal/narrative"
	narrativemocks "github.com/godilite/maturity-server/internal/narrative/mocks"
	"github.com/godilite/maturity-server/internal/repository"
	"github.com/godilite/maturity-server/internal/service"
	dbbuilder "github.com/godilite/maturity-server/pkg/database"
	grpcsrv "github.com/godilite/maturity-server/pkg/grpc/server"
	"github.com/godilite/maturity-server/tests/e2e/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const generatedNarrative = `{
  "executiveSummary": "Planning is the binding constraint.",
  "categoryAnalysis": [{"category": "planning", "score": 1.5, "rootCause": "No S&OP", "impact": "Stock-outs", "quickWins": ["Weekly demand review"]}],
  "priorityMatrix": {"quickWins": ["Weekly demand review"], "majorProjects": [], "fillIns": [], "deprioritize": []},
  "interdependencies": ["Planning drives inventory"],
  "industryContext": "Typical for discrete manufacturing."
}`

type harness struct {
	client pb.AssessmentClient
	cache  *mocks.MemoryCache
	gen    *narrativemocks.MockGenerator
}

func setup(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(dbbuilder.DriverSQLite),
		dbbuilder.WithDataSource(":memory:"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewAssessmentRepository(db, dbbuilder.DriverSQLite)
	require.NoError(t, repo.Migrate(ctx))
	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, repo.SeedCatalog(ctx, cat))

	gen := &narrativemocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, _ []narrative.Message, _ narrative.GenerateOptions) (string, error) {
			return generatedNarrative, nil
		},
	}
	narratives := narrative.NewService(gen, repo, logger)
	engine := benchmark.NewEngine(benchmark.Config{MinCohortSupport: 2, SufficiencySize: 3})
	svc := service.NewAssessmentService(repo, narratives, engine, logger)

	cache := mocks.NewMemoryCache()
	handlers := handler.NewGRPCHandlers(svc, cache, logger, time.Minute)

	lis := bufconn.Listen(1 << 20)
	srv, err := grpcsrv.New(grpcsrv.WithListener(lis), grpcsrv.WithLogger(logger), grpcsrv.WithLogging(true))
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(pb.Assessment_ServiceName, func(s *grpc.Server) {
		pb.RegisterAssessmentServer(s, handlers)
	})
	srv.Start()
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{client: pb.NewAssessmentClient(conn), cache: cache, gen: gen}
}

func submission(email, industry string, planning, inventory int32) *pb.SubmitAssessmentRequest {
	return &pb.SubmitAssessmentRequest{
		Respondent: &pb.Respondent{
			Name:     "Ops Lead",
			Email:    email,
			Company:  "Company " + email,
			Industry: industry,
		},
		Answers: []*pb.Answer{
			{QuestionId: 101, Value: planning},
			{QuestionId: 102, Value: planning},
			{QuestionId: 501, Value: inventory},
			{QuestionId: 502, Value: inventory},
		},
	}
}

func TestE2E_SubmitAndRead(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	resp, err := h.client.SubmitAssessment(ctx, submission("a@example.com", "Retail", 2, 4))
	require.NoError(t, err)
	require.NotEmpty(t, resp.ResultId)
	assert.True(t, resp.Created)
	require.Len(t, resp.Categories, 2)
	assert.Equal(t, "inventory", resp.Categories[0].Key)
	assert.Equal(t, 4.0, resp.Categories[0].Score)
	assert.Equal(t, "planning", resp.Categories[1].Key)
	assert.Equal(t, 2.0, resp.Categories[1].Score)
	assert.Equal(t, 3.0, resp.OverallScore)
	assert.NotEmpty(t, resp.Plan)

	got, err := h.client.GetAssessment(ctx, &pb.ResultRequest{ResultId: resp.ResultId})
	require.NoError(t, err)
	assert.Equal(t, resp.OverallScore, got.OverallScore)
	assert.Equal(t, "a@example.com", got.Respondent.Email)

	recs, err := h.client.GetRecommendations(ctx, &pb.ResultRequest{ResultId: resp.ResultId})
	require.NoError(t, err)
	require.Len(t, recs.Items, len(resp.Plan))
	for i, item := range recs.Items {
		assert.Equal(t, resp.Plan[i].Id, item.Id)
		assert.Equal(t, int32(i), item.DisplayOrder)
	}
}

func TestE2E_ResubmissionReplacesResult(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	first, err := h.client.SubmitAssessment(ctx, submission("b@example.com", "Retail", 1, 1))
	require.NoError(t, err)

	// warm the narrative cache
	n, err := h.client.GetNarrative(ctx, &pb.ResultRequest{ResultId: first.ResultId})
	require.NoError(t, err)
	assert.Equal(t, "generated", n.Source)

	again := submission("B@Example.com ", "Retail", 5, 5)
	again.Respondent.Company = "Company b@example.com"
	second, err := h.client.SubmitAssessment(ctx, again)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ResultId, second.ResultId)
	assert.Equal(t, 5.0, second.OverallScore)
	assert.Empty(t, second.Plan, "a perfect score needs no improvements")

	// the stored narrative was cleared, so the next read generates again
	n, err = h.client.GetNarrative(ctx, &pb.ResultRequest{ResultId: first.ResultId})
	require.NoError(t, err)
	assert.Equal(t, "generated", n.Source)
	assert.Equal(t, 2, h.gen.Calls())
}

func TestE2E_Benchmark(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	var target string
	for i, planning := range []int32{1, 2, 3, 4, 5} {
		resp, err := h.client.SubmitAssessment(ctx, submission(fmt.Sprintf("peer%d@example.com", i), "Retail", planning, 3))
		require.NoError(t, err)
		if planning == 4 {
			target = resp.ResultId
		}
	}
	_, err := h.client.SubmitAssessment(ctx, submission("other@example.com", "Chemicals", 5, 5))
	require.NoError(t, err)

	bm, err := h.client.GetBenchmark(ctx, &pb.ResultRequest{ResultId: target})
	require.NoError(t, err)
	assert.True(t, bm.FilterApplied)
	assert.Equal(t, "Retail", bm.Industry)
	assert.Equal(t, int32(4), bm.SampleSize)
	assert.True(t, bm.Sufficient)

	var planning *pb.CategoryBenchmark
	for _, c := range bm.Categories {
		if c.Key == "planning" {
			planning = c
		}
	}
	require.NotNil(t, planning)
	assert.Equal(t, 4.0, planning.Score)
	assert.InDelta(t, 2.75, planning.Average, 1e-9)
	require.NotNil(t, planning.Percentile)
	assert.InDelta(t, 75.0, *planning.Percentile, 1e-9)
	require.NotNil(t, planning.TopPercent)
	assert.InDelta(t, 25.0, *planning.TopPercent, 1e-9)

	require.Eventually(t, func() bool {
		return h.cache.Has("grpc:benchmark:" + target)
	}, time.Second, 10*time.Millisecond)

	again := submission("peer3@example.com", "Retail", 4, 4)
	_, err = h.client.SubmitAssessment(ctx, again)
	require.NoError(t, err)
	assert.False(t, h.cache.Has("grpc:benchmark:"+target), "resubmission evicts the cached benchmark")
}

func TestE2E_BenchmarkWithoutPeers(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	resp, err := h.client.SubmitAssessment(ctx, submission("solo@example.com", "", 3, 3))
	require.NoError(t, err)

	bm, err := h.client.GetBenchmark(ctx, &pb.ResultRequest{ResultId: resp.ResultId})
	require.NoError(t, err)
	assert.True(t, bm.NoData)
	assert.Equal(t, int32(0), bm.SampleSize)
	assert.NotEmpty(t, bm.Message)
}

func TestE2E_NarrativeCaching(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	resp, err := h.client.SubmitAssessment(ctx, submission("c@example.com", "Retail", 2, 3))
	require.NoError(t, err)
	req := &pb.ResultRequest{ResultId: resp.ResultId}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.client.GetNarrative(ctx, req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, h.gen.Calls(), 2)

	cached, err := h.client.GetNarrative(ctx, req)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, "cached", cached.Source)
	assert.Equal(t, "Planning is the binding constraint.", cached.Narrative.ExecutiveSummary)

	inv, err := h.client.InvalidateNarrative(ctx, req)
	require.NoError(t, err)
	assert.True(t, inv.Invalidated)

	fresh, err := h.client.GetNarrative(ctx, req)
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, "generated", fresh.Source)
}

func TestE2E_NarrativeFallback(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	h.gen.GenerateFunc = func(context.Context, []narrative.Message, narrative.GenerateOptions) (string, error) {
		return "not json", nil
	}

	resp, err := h.client.SubmitAssessment(ctx, submission("d@example.com", "Retail", 1, 2))
	require.NoError(t, err)
	req := &pb.ResultRequest{ResultId: resp.ResultId}

	n, err := h.client.GetNarrative(ctx, req)
	require.NoError(t, err)
	assert.True(t, n.IsFallback)
	assert.Equal(t, "fallback", n.Source)
	assert.NotEmpty(t, n.Narrative.ExecutiveSummary)

	// fallbacks are never stored
	n, err = h.client.GetNarrative(ctx, req)
	require.NoError(t, err)
	assert.False(t, n.Cached)
	assert.Equal(t, 2, h.gen.Calls())
}

func TestE2E_Errors(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	_, err := h.client.SubmitAssessment(ctx, submission("e@example.com", "Retail", 7, 3))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad := submission("", "Retail", 3, 3)
	_, err = h.client.SubmitAssessment(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.GetAssessment(ctx, &pb.ResultRequest{ResultId: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.GetBenchmark(ctx, &pb.ResultRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.InvalidateNarrative(ctx, &pb.ResultRequest{ResultId: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestE2E_ListCategories(t *testing.T) {
	h := setup(t)

	resp, err := h.client.ListCategories(context.Background(), &pb.ListCategoriesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Categories, 6)

	var questions int
	for _, c := range resp.Categories {
		questions += len(c.Questions)
		for _, q := range c.Questions {
			assert.NotEqual(t, int64(604), q.Id, "inactive questions are hidden")
		}
	}
	assert.Equal(t, 23, questions)
}
