package model

// NoticeKind identifies the type of outbound notification
type NoticeKind string

const (
	// Session events
	NoticeWaitingForPlayers NoticeKind = "waiting_for_players"
	NoticePlayerJoined      NoticeKind = "player_joined"
	NoticePlayerLeft        NoticeKind = "player_left"
	NoticeServerFull        NoticeKind = "server_full"

	// Round events
	NoticeRoundStarted      NoticeKind = "round_started"
	NoticeYourTurn          NoticeKind = "your_turn"
	NoticeAwaitTurn         NoticeKind = "await_turn"
	NoticeNotYourTurn       NoticeKind = "not_your_turn"
	NoticeInvalidGuess      NoticeKind = "invalid_guess"
	NoticeGuessResult       NoticeKind = "guess_result"
	NoticeRoundWon          NoticeKind = "round_won"
	NoticeRoundLost         NoticeKind = "round_lost"
	NoticeAttemptsExhausted NoticeKind = "attempts_exhausted"
	NoticeRoundDrawn        NoticeKind = "round_drawn"
)

// Notice is an outbound message computed by the session engine while it
// holds the game lock. Dispatch happens after the lock is released so a
// slow client write can never stall turn evaluation.
type Notice struct {
	// To identifies the recipient; empty means every registered player
	To      PlayerID
	Kind    NoticeKind
	Payload any
}

// Broadcast reports whether the notice targets all registered players
func (n Notice) Broadcast() bool {
	return n.To == ""
}

// RoundStartedPayload contains data for round started notices
type RoundStartedPayload struct {
	PlayerCount int
	CodeLength  int
}

// AwaitTurnPayload names the player whose turn it now is
type AwaitTurnPayload struct {
	PlayerName string
}

// InvalidGuessPayload contains data for invalid guess notices
type InvalidGuessPayload struct {
	CodeLength int
}

// GuessResultPayload carries the peg counts for a scored guess
type GuessResultPayload struct {
	Exact   int
	Partial int
}

// RoundWonPayload contains data for round won/lost notices
type RoundWonPayload struct {
	Winner string
}

// RoundDrawnPayload reveals the code when a round ends with no winner
type RoundDrawnPayload struct {
	SecretCode string
}

// PlayerJoinedPayload contains data for player joined notices
type PlayerJoinedPayload struct {
	PlayerName  string
	PlayerCount int
}

// PlayerLeftPayload contains data for player left notices
type PlayerLeftPayload struct {
	PlayerName string
}
