package server

import (
	"fmt"

	"github.com/mcoot/codemaster-go/internal/model"
)

// Render maps a session notice onto its single-line protocol message.
// Unknown kinds render empty and are skipped by the dispatcher.
func Render(n model.Notice) string {
	switch n.Kind {
	case model.NoticeWaitingForPlayers:
		return "Waiting for more players to join..."
	case model.NoticePlayerJoined:
		p, _ := n.Payload.(model.PlayerJoinedPayload)
		return fmt.Sprintf("%s joined the game (%d connected).", p.PlayerName, p.PlayerCount)
	case model.NoticePlayerLeft:
		p, _ := n.Payload.(model.PlayerLeftPayload)
		return fmt.Sprintf("%s left the game.", p.PlayerName)
	case model.NoticeServerFull:
		return "Server is full, try again later."
	case model.NoticeRoundStarted:
		p, _ := n.Payload.(model.RoundStartedPayload)
		return fmt.Sprintf("New round started! Crack the secret %d-character code. %d player(s) in the game.",
			p.CodeLength, p.PlayerCount)
	case model.NoticeYourTurn:
		return "Your turn! Enter your guess:"
	case model.NoticeAwaitTurn:
		p, _ := n.Payload.(model.AwaitTurnPayload)
		return fmt.Sprintf("Waiting for %s to move.", p.PlayerName)
	case model.NoticeNotYourTurn:
		return "Not your turn, please wait."
	case model.NoticeInvalidGuess:
		p, _ := n.Payload.(model.InvalidGuessPayload)
		return fmt.Sprintf("Guess must be exactly %d characters (A-Z, 0-9). Try again:", p.CodeLength)
	case model.NoticeGuessResult:
		p, _ := n.Payload.(model.GuessResultPayload)
		return fmt.Sprintf("Exact: %d, Partial: %d", p.Exact, p.Partial)
	case model.NoticeRoundWon:
		return "Congratulations! You cracked the code!"
	case model.NoticeRoundLost:
		p, _ := n.Payload.(model.RoundWonPayload)
		return fmt.Sprintf("%s cracked the code and won!", p.Winner)
	case model.NoticeAttemptsExhausted:
		return "You have used all your attempts for this round."
	case model.NoticeRoundDrawn:
		p, _ := n.Payload.(model.RoundDrawnPayload)
		return fmt.Sprintf("Nobody cracked the code. The secret was %s.", p.SecretCode)
	default:
		return ""
	}
}
