package model

import "time"

// SessionState represents the current phase of the game session
type SessionState string

const (
	// SessionStateWaiting means fewer than the minimum players are registered
	SessionStateWaiting SessionState = "waiting_for_players"
	// SessionStateRoundActive means a round is in progress.
	// Round end is transient and resolves synchronously back to one of
	// these two states, so it is never observable as a stored state.
	SessionStateRoundActive SessionState = "round_active"
)

// SessionSnapshot is an immutable view of the session, taken under the
// engine lock. Consumed by the status API and by tests.
type SessionSnapshot struct {
	State          SessionState     `json:"state"`
	Players        []PlayerSnapshot `json:"players"`
	TurnIndex      int              `json:"turn_index"`
	CurrentPlayer  string           `json:"current_player,omitempty"` // empty when waiting
	CodeLength     int              `json:"code_length"`
	MaxAttempts    int              `json:"max_attempts"`
	RoundStartedAt time.Time        `json:"round_started_at,omitzero"`
}
