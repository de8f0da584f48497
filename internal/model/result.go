package model

import "time"

// RoundResult is the durable record of a completed round
type RoundResult struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	SecretCode string    `json:"secret_code"`
	// Winner is the winning player's name, or empty when the round ended
	// with every player out of attempts
	Winner        string         `json:"winner,omitempty"`
	PlayerResults []PlayerResult `json:"player_results"`
}

// PlayerResult records one player's attempt tally for a round
type PlayerResult struct {
	PlayerName string `json:"player_name"`
	Attempts   int    `json:"attempts"`
}
