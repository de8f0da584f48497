package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a connected participant in the game session.
// Attempts and Exhausted are owned by the session engine and must only be
// mutated while holding the engine lock.
type Player struct {
	ID   PlayerID
	Name string
	// Attempts only increases during a round and resets at round start
	Attempts int
	// Exhausted is set once the player has used every attempt this round
	Exhausted bool
	JoinedAt  time.Time
}

// PlayerSnapshot is a read-only copy of a player's round state
type PlayerSnapshot struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Attempts  int      `json:"attempts"`
	Exhausted bool     `json:"exhausted"`
}
