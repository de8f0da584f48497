package model

import "errors"

// Common errors used across the application
var (
	// Registration errors
	ErrGameFull       = errors.New("game is at maximum capacity")
	ErrPlayerNotFound = errors.New("player not found")

	// Guess errors
	ErrNotPlayerTurn = errors.New("not this player's turn")
	ErrInvalidGuess  = errors.New("guess is not a valid code")
	ErrNoActiveRound = errors.New("no round in progress")
)
