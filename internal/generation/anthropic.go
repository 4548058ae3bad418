package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultModel     = string(anthropic.ModelClaudeSonnet4_20250514)
	defaultMaxTokens = 4096
	jsonOnlySuffix   = "\n\nRespond with strict JSON only."
)

// AnthropicMessager is the subset of the Anthropic client used here.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type Options struct {
	Model string
	// RequestsPerMinute caps outbound calls; zero disables limiting.
	RequestsPerMinute int
	Burst             int
	Logger            *zap.Logger
}

type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithRateLimit(rpm, burst int) Option {
	return func(o *Options) {
		o.RequestsPerMinute = rpm
		o.Burst = burst
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// AnthropicGenerator implements narrative.Generator on the Anthropic Messages API.
type AnthropicGenerator struct {
	messages AnthropicMessager
	model    string
	limiter  *rate.Limiter
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewAnthropic creates a generator with a real client for apiKey.
func NewAnthropic(apiKey string, opts ...Option) (*AnthropicGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key not configured")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicWithClient(&client.Messages, opts...), nil
}

func NewAnthropicWithClient(messages AnthropicMessager, opts ...Option) *AnthropicGenerator {
	options := Options{Model: defaultModel}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Model == "" {
		options.Model = defaultModel
	}

	var limiter *rate.Limiter
	if options.RequestsPerMinute > 0 {
		burst := options.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(options.RequestsPerMinute)/60.0), burst)
	}

	return &AnthropicGenerator{
		messages: messages,
		model:    options.Model,
		limiter:  limiter,
		logger:   options.Logger.Named("anthropic"),
		tracer:   otel.Tracer("github.com/godilite/maturity-server/internal/generation"),
	}
}

// Generate sends the conversation and returns the concatenated text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, messages []narrative.Message, opts narrative.GenerateOptions) (string, error) {
	ctx, span := g.tracer.Start(ctx, "anthropic.Messages.New",
		trace.WithAttributes(attribute.String("llm.model", g.model)))
	defer span.End()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrGenerationUnavailable, err)
		}
	}

	params := buildParams(g.model, messages, opts)
	resp, err := g.messages.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}

	g.logger.Debug("generation completed",
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))
	span.SetAttributes(
		attribute.Int64("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int64("llm.output_tokens", resp.Usage.OutputTokens))
	return text, nil
}

func buildParams(model string, messages []narrative.Message, opts narrative.GenerateOptions) anthropic.MessageNewParams {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var system []string
	conversation := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case narrative.RoleSystem:
			system = append(system, m.Content)
		case narrative.RoleAssistant:
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	systemText := strings.Join(system, "\n\n")
	if opts.StructuredOutput {
		systemText += jsonOnlySuffix
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    conversation,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if strings.TrimSpace(systemText) != "" {
		params.System = []anthropic.TextBlockParam{{Text: strings.TrimSpace(systemText)}}
	}
	return params
}

// Disabled is the generator used when no provider is configured. Every call
// fails as unavailable so callers take the fallback path.
type Disabled struct{}

func (Disabled) Generate(context.Context, []narrative.Message, narrative.GenerateOptions) (string, error) {
	return "", fmt.Errorf("%w: no generation provider configured", domain.ErrGenerationUnavailable)
}
