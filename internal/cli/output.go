package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SessionStatus:
		o.printSessionStatus(v)
	case []RoundResult:
		o.printRoundResults(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// PlayerStatus response type (matches the status API)
type PlayerStatus struct {
	Name      string `json:"name"`
	Attempts  int    `json:"attempts"`
	Exhausted bool   `json:"exhausted"`
}

// SessionStatus response type
type SessionStatus struct {
	State         string         `json:"state"`
	Players       []PlayerStatus `json:"players"`
	CurrentPlayer string         `json:"current_player,omitempty"`
	CodeLength    int            `json:"code_length"`
	MaxAttempts   int            `json:"max_attempts"`
}

// RoundResult response type
type RoundResult struct {
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	SecretCode    string         `json:"secret_code"`
	Winner        string         `json:"winner,omitempty"`
	PlayerResults []PlayerResult `json:"player_results"`
}

// PlayerResult response type
type PlayerResult struct {
	PlayerName string `json:"player_name"`
	Attempts   int    `json:"attempts"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSessionStatus(s SessionStatus) {
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("Code Length: %d\n", s.CodeLength)
	fmt.Printf("Max Attempts: %d\n", s.MaxAttempts)
	if s.CurrentPlayer != "" {
		fmt.Printf("Current Turn: %s\n", s.CurrentPlayer)
	}
	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		exhaustedStr := ""
		if p.Exhausted {
			exhaustedStr = " [out of attempts]"
		}
		fmt.Printf("  - %s: %d attempt(s)%s\n", p.Name, p.Attempts, exhaustedStr)
	}
}

func (o *Output) printRoundResults(rounds []RoundResult) {
	if len(rounds) == 0 {
		fmt.Println("No completed rounds.")
		return
	}
	for i, r := range rounds {
		winner := r.Winner
		if winner == "" {
			winner = "nobody"
		}
		fmt.Printf("Round %d: code %s, won by %s\n", i+1, r.SecretCode, winner)
		fmt.Printf("  Started: %s\n", r.StartTime.Format(time.RFC3339))
		fmt.Printf("  Ended:   %s\n", r.EndTime.Format(time.RFC3339))
		for _, p := range r.PlayerResults {
			fmt.Printf("  - %s: %d attempt(s)\n", p.PlayerName, p.Attempts)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
