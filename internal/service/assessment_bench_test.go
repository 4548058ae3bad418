package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/catalog"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"github.com/godilite/maturity-server/internal/repository"
	"github.com/godilite/maturity-server/internal/service/mocks"
	dbbuilder "github.com/godilite/maturity-server/pkg/database"
	"go.uber.org/zap"
)

func setupRealDB(tb testing.TB) *repository.AssessmentRepository {
	tb.Helper()
	ctx := context.Background()

	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(dbbuilder.DriverSQLite),
		dbbuilder.WithDataSource(":memory:"),
	)
	if err != nil {
		tb.Fatalf("failed to create db pool via builder: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	repo := repository.NewAssessmentRepository(db, dbbuilder.DriverSQLite)
	if err := repo.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate: %v", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		tb.Fatalf("failed to load catalog: %v", err)
	}
	if err := repo.SeedCatalog(ctx, cat); err != nil {
		tb.Fatalf("failed to seed catalog: %v", err)
	}
	return repo
}

func seedSubmissions(tb testing.TB, svc *AssessmentService, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.Submit(context.Background(), SubmitInput{
			Respondent: domain.Respondent{
				Email:    fmt.Sprintf("user%d@bench.test", i),
				Company:  "Bench",
				Industry: []string{"Retail", "Pharma", "Automotive"}[i%3],
			},
			Answers: map[int64]int{101: 1 + i%5, 201: 1 + (i+1)%5, 301: 1 + (i+2)%5, 401: 3, 501: 4, 601: 2},
		})
		if err != nil {
			tb.Fatalf("seed submission %d: %v", i, err)
		}
	}
}

func newRealService(tb testing.TB) *AssessmentService {
	repo := setupRealDB(tb)
	analyzer := &mocks.MockNarrativeAnalyzer{
		AnalyzeFunc: func(ctx context.Context, req narrative.Request) (narrative.Response, error) {
			return narrative.Response{Source: narrative.SourceFallback, IsFallback: true, GeneratedAt: time.Now()}, nil
		},
	}
	n := 0
	return NewAssessmentService(repo, analyzer, benchmark.NewEngine(benchmark.Config{}), zap.NewNop(),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("bench-%d", n)
		}))
}

func TestAssessmentService_RealDB(t *testing.T) {
	svc := newRealService(t)
	seedSubmissions(t, svc, 12)

	rep, err := svc.Report(context.Background(), "bench-1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Benchmark.SampleSize != 11 {
		t.Fatalf("expected 11 peers, got %d", rep.Benchmark.SampleSize)
	}
	if !rep.Benchmark.Sufficient {
		t.Fatalf("expected a sufficient benchmark")
	}
}

func BenchmarkSubmit(b *testing.B) {
	svc := newRealService(b)
	ctx := context.Background()
	in := SubmitInput{
		Respondent: domain.Respondent{Email: "bench@bench.test", Company: "Bench", Industry: "Retail"},
		Answers:    map[int64]int{101: 2, 102: 3, 201: 4, 301: 1, 401: 5, 501: 3, 601: 2},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Submit(ctx, in); err != nil {
			b.Fatalf("Submit: %v", err)
		}
	}
}

func BenchmarkBenchmark(b *testing.B) {
	svc := newRealService(b)
	seedSubmissions(b, svc, 200)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Benchmark(ctx, "bench-1"); err != nil {
			b.Fatalf("Benchmark: %v", err)
		}
	}
}
