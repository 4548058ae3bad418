package narrative

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godilite/maturity-server/internal/benchmark"
	"github.com/godilite/maturity-server/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.4
	defaultTimeout     = 60 * time.Second
	storeTimeout       = 5 * time.Second
)

type Source string

const (
	SourceCached    Source = "cached"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

type Request struct {
	// ResultID enables caching when set.
	ResultID    string
	Scores      map[string]float64
	Overall     float64
	Titles      map[string]string
	Industry    string
	CompanySize string
	Benchmark   *benchmark.Report
}

type Response struct {
	Narrative   domain.Narrative `json:"narrative"`
	Source      Source           `json:"source"`
	Cached      bool             `json:"cached"`
	IsFallback  bool             `json:"isFallback"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Now         func() time.Time
}

type Option func(*Options)

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

// WithTimeout bounds a single generator call. Exceeding it counts as the
// generator being unavailable.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// Service produces narratives with at most one successful generation per
// survey result. Concurrent requests for the same uncached result share one
// generator call.
type Service struct {
	gen     Generator
	store   Store
	logger  *zap.Logger
	opts    Options
	sfGroup singleflight.Group
	tracer  trace.Tracer

	// epochs counts invalidations per result. persistMu serialises the
	// epoch check with the store write so an invalidation cannot land
	// between them.
	persistMu sync.Mutex
	epochs    map[string]uint64
}

// NewService builds the narrative service. A nil store disables caching.
func NewService(gen Generator, store Store, logger *zap.Logger, opts ...Option) *Service {
	if gen == nil {
		panic("generator must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	options := Options{
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
		Timeout:     defaultTimeout,
		Now:         time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}
	return &Service{
		gen:    gen,
		store:  store,
		logger: logger.Named("narrative"),
		opts:   options,
		tracer: otel.Tracer("github.com/godilite/maturity-server/internal/narrative"),
		epochs: make(map[string]uint64),
	}
}

// Analyze returns the cached narrative for req.ResultID when present, and
// otherwise generates one. Generation failures degrade to Fallback and are
// never returned as errors.
func (s *Service) Analyze(ctx context.Context, req Request) (Response, error) {
	if len(req.Scores) == 0 {
		return Response{}, domain.ErrMissingScores
	}

	ctx, span := s.tracer.Start(ctx, "narrative.Analyze",
		trace.WithAttributes(attribute.String("result.id", req.ResultID)))
	defer span.End()

	if req.ResultID == "" || s.store == nil {
		resp := s.generate(ctx, req)
		span.SetAttributes(attribute.String("narrative.source", string(resp.Source)))
		return resp, nil
	}

	epoch := s.epoch(req.ResultID)
	if resp, ok := s.lookup(ctx, req.ResultID); ok {
		span.SetAttributes(attribute.String("narrative.source", string(resp.Source)))
		return resp, nil
	}

	v, _, shared := s.sfGroup.Do(req.ResultID, func() (any, error) {
		flightCtx := context.WithoutCancel(ctx)
		if resp, ok := s.lookup(flightCtx, req.ResultID); ok {
			return resp, nil
		}
		resp := s.generate(flightCtx, req)
		if !resp.IsFallback {
			s.persist(flightCtx, req.ResultID, epoch, resp)
		}
		return resp, nil
	})
	if shared {
		s.logger.Debug("narrative generation shared", zap.String("result_id", req.ResultID))
	}

	resp := v.(Response)
	span.SetAttributes(attribute.String("narrative.source", string(resp.Source)))
	return resp, nil
}

// Invalidate drops the stored narrative so the next Analyze generates again.
func (s *Service) Invalidate(ctx context.Context, resultID string) error {
	if s.store == nil || resultID == "" {
		return nil
	}
	s.persistMu.Lock()
	s.epochs[resultID]++
	s.persistMu.Unlock()

	s.sfGroup.Forget(resultID)
	if err := s.store.ClearNarrative(ctx, resultID); err != nil {
		return fmt.Errorf("clear narrative: %w", err)
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, resultID string) (Response, bool) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	n, at, found, err := s.store.GetNarrative(ctx, resultID)
	if err != nil {
		s.logger.Warn("narrative cache read failed (treating as miss)",
			zap.String("result_id", resultID), zap.Error(err))
		return Response{}, false
	}
	if !found || n == nil {
		return Response{}, false
	}
	s.logger.Debug("narrative cache hit", zap.String("result_id", resultID))
	return Response{Narrative: *n, Source: SourceCached, Cached: true, GeneratedAt: at}, true
}

func (s *Service) generate(ctx context.Context, req Request) Response {
	ctx, span := s.tracer.Start(ctx, "narrative.generate")
	defer span.End()

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	raw, err := s.gen.Generate(genCtx, BuildPrompt(req), GenerateOptions{
		MaxTokens:        s.opts.MaxTokens,
		Temperature:      s.opts.Temperature,
		StructuredOutput: true,
	})
	if err == nil {
		var n domain.Narrative
		n, err = Parse(raw)
		if err == nil {
			return Response{Narrative: n, Source: SourceGenerated, GeneratedAt: s.opts.Now()}
		}
	} else if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrGenerationUnavailable) {
		err = fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "fallback")
	s.logger.Warn("narrative generation failed, using fallback",
		zap.String("result_id", req.ResultID),
		zap.Bool("unavailable", errors.Is(err, domain.ErrGenerationUnavailable)),
		zap.Bool("malformed", errors.Is(err, domain.ErrMalformedResponse)),
		zap.Error(err))

	return Response{
		Narrative:   Fallback(req),
		Source:      SourceFallback,
		IsFallback:  true,
		GeneratedAt: s.opts.Now(),
	}
}

func (s *Service) epoch(resultID string) uint64 {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.epochs[resultID]
}

// persist stores resp unless the result was invalidated after generation
// started at epoch.
func (s *Service) persist(ctx context.Context, resultID string, epoch uint64, resp Response) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.epochs[resultID] != epoch {
		s.logger.Info("narrative invalidated during generation, not persisting",
			zap.String("result_id", resultID))
		return
	}

	if err := s.store.SaveNarrative(ctx, resultID, resp.Narrative, resp.GeneratedAt); err != nil {
		s.logger.Error("failed to persist narrative",
			zap.String("result_id", resultID), zap.Error(err))
		return
	}
	s.logger.Info("narrative persisted", zap.String("result_id", resultID))
}
