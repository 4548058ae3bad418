package mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godilite/maturity-server/internal/domain"
	"github.com/godilite/maturity-server/internal/narrative"
)

// MockGenerator is a function-based mock of narrative.Generator that counts calls.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, messages []narrative.Message, opts narrative.GenerateOptions) (string, error)
	calls        atomic.Int32
}

// Generate implements narrative.Generator
func (m *MockGenerator) Generate(ctx context.Context, messages []narrative.Message, opts narrative.GenerateOptions) (string, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, opts)
	}
	return "", errors.New("GenerateFunc not implemented")
}

func (m *MockGenerator) Calls() int {
	return int(m.calls.Load())
}

type storedNarrative struct {
	narrative   domain.Narrative
	generatedAt time.Time
}

// MemoryStore is an in-memory narrative.Store. The Err fields force failures.
type MemoryStore struct {
	GetErr   error
	SaveErr  error
	ClearErr error

	mu    sync.Mutex
	data  map[string]storedNarrative
	saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]storedNarrative)}
}

// GetNarrative implements narrative.Store
func (s *MemoryStore) GetNarrative(ctx context.Context, resultID string) (*domain.Narrative, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, time.Time{}, false, s.GetErr
	}
	e, ok := s.data[resultID]
	if !ok {
		return nil, time.Time{}, false, nil
	}
	n := e.narrative
	return &n, e.generatedAt, true, nil
}

// SaveNarrative implements narrative.Store
func (s *MemoryStore) SaveNarrative(ctx context.Context, resultID string, n domain.Narrative, generatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data[resultID] = storedNarrative{narrative: n, generatedAt: generatedAt}
	return nil
}

// ClearNarrative implements narrative.Store
func (s *MemoryStore) ClearNarrative(ctx context.Context, resultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	delete(s.data, resultID)
	return nil
}

func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
