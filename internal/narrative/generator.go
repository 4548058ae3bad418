package narrative

import (
	"context"
	"time"

	"github.com/godilite/maturity-server/internal/domain"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type GenerateOptions struct {
	MaxTokens        int
	Temperature      float64
	StructuredOutput bool
}

// Generator is the text-generation collaborator. Implementations wrap
// domain.ErrGenerationUnavailable for transport, auth and quota failures.
type Generator interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}

// Store persists narratives onto survey results. Get returns found=false when
// nothing is cached for the identifier.
type Store interface {
	GetNarrative(ctx context.Context, resultID string) (n *domain.Narrative, generatedAt time.Time, found bool, err error)
	SaveNarrative(ctx context.Context, resultID string, n domain.Narrative, generatedAt time.Time) error
	ClearNarrative(ctx context.Context, resultID string) error
}
