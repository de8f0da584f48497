package memory

import (
	"context"
	"sync"

	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// Store is an in-memory implementation of the result store, used in
// tests and as the zero-configuration default for local runs
type Store struct {
	mu     sync.RWMutex
	rounds []*model.RoundResult
}

// New creates a new in-memory store
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ storage.ResultStore = (*Store)(nil)

// RecordRound appends a finished round
func (s *Store) RecordRound(ctx context.Context, result *model.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	copied.PlayerResults = append([]model.PlayerResult(nil), result.PlayerResults...)
	s.rounds = append(s.rounds, &copied)
	return nil
}

// ListRounds returns all recorded rounds in append order
func (s *Store) ListRounds(ctx context.Context) ([]*model.RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.RoundResult, len(s.rounds))
	copy(out, s.rounds)
	return out, nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}
