package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// Store persists round results as a single JSON document. Each record
// reads the whole file, appends, and rewrites it via a temp file rename.
// Round completion is rare relative to guess traffic, so the full rewrite
// is acceptable.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a file store writing to path. The parent directory is
// created if missing.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &Store{path: path}, nil
}

// Ensure Store implements the interface
var _ storage.ResultStore = (*Store)(nil)

// RecordRound appends a finished round and rewrites the file
func (s *Store) RecordRound(ctx context.Context, result *model.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rounds, err := s.readLocked()
	if err != nil {
		// An unreadable or corrupt file must not lose the new round;
		// start a fresh list like the store had never been written
		rounds = nil
	}
	rounds = append(rounds, result)

	data, err := json.MarshalIndent(rounds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// ListRounds returns all recorded rounds in append order
func (s *Store) ListRounds(ctx context.Context) ([]*model.RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Close is a no-op; the file is not held open between operations
func (s *Store) Close() error {
	return nil
}

func (s *Store) readLocked() ([]*model.RoundResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read results: %w", err)
	}

	var rounds []*model.RoundResult
	if err := json.Unmarshal(data, &rounds); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return rounds, nil
}
