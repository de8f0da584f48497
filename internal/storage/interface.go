package storage

import (
	"context"

	"github.com/mcoot/codemaster-go/internal/model"
)

// ResultStore defines the interface for round result persistence.
// Recording is best-effort from the game's point of view: the session
// engine logs failures and carries on, so implementations must never
// panic on bad underlying state.
type ResultStore interface {
	// RecordRound appends a finished round to the store
	RecordRound(ctx context.Context, result *model.RoundResult) error

	// ListRounds returns all recorded rounds in append order
	ListRounds(ctx context.Context) ([]*model.RoundResult, error)

	// Close releases any resources held by the store
	Close() error
}
