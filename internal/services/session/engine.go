package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/codemaster-go/internal/dependencies/clock"
	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/services/scoring"
	"github.com/mcoot/codemaster-go/internal/services/secret"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// Config holds the tunable session rules
type Config struct {
	// MinPlayers is the registered-player count that starts a round
	MinPlayers int
	// MaxPlayers is the hard capacity ceiling; registration beyond it is rejected
	MaxPlayers int
	// MaxAttempts is the per-player attempt limit per round
	MaxAttempts int
	// TurnTimeout forfeits a turn that receives no valid guess in time.
	// Zero disables the timer and a silent player holds the round open.
	TurnTimeout time.Duration
}

// DefaultConfig returns the standard session rules
func DefaultConfig() Config {
	return Config{
		MinPlayers:  2,
		MaxPlayers:  4,
		MaxAttempts: 10,
		TurnTimeout: 0,
	}
}

// Engine owns the active round: the secret code, the ordered player list,
// the turn pointer and per-player attempt counters. Every mutation runs
// under one mutex so turn evaluation, registration and disconnects are
// linearizable. Methods return the outbound notices they computed; callers
// dispatch them after the lock is released.
type Engine struct {
	cfg      Config
	secrets  *secret.Generator
	scorer   scoring.ServiceInterface
	recorder storage.ResultStore
	clock    clock.Clock
	logger   *slog.Logger

	mu         sync.Mutex
	state      model.SessionState
	players    []*model.Player
	turn       int
	secretCode string
	roundStart time.Time
	nameSeq    int

	// turnGen guards the forfeit timer: a timer firing for a stale
	// generation is a no-op
	turnGen   int
	turnTimer clock.Timer

	// notify dispatches timer-driven notices; nil drops them
	notify func([]model.Notice)
}

// NewEngine creates a session engine. Zero config fields fall back to
// DefaultConfig values.
func NewEngine(
	cfg Config,
	secrets *secret.Generator,
	scorer scoring.ServiceInterface,
	recorder storage.ResultStore,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	def := DefaultConfig()
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = def.MinPlayers
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	return &Engine{
		cfg:      cfg,
		secrets:  secrets,
		scorer:   scorer,
		recorder: recorder,
		clock:    clk,
		logger:   logger,
		state:    model.SessionStateWaiting,
	}
}

// SetNotifier installs the dispatch sink for notices the engine produces
// outside a caller-driven operation (turn forfeit timers). Must be called
// before the first player joins.
func (e *Engine) SetNotifier(notify func([]model.Notice)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notify = notify
}

// Join registers a new player under the caller-supplied connection
// identity and returns the assigned name along with the notices to
// dispatch. Registration is rejected with ErrGameFull once MaxPlayers
// are registered.
func (e *Engine) Join(ctx context.Context, id model.PlayerID) (model.PlayerSnapshot, []model.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.players) >= e.cfg.MaxPlayers {
		return model.PlayerSnapshot{}, nil, model.ErrGameFull
	}

	e.nameSeq++
	player := &model.Player{
		ID:       id,
		Name:     fmt.Sprintf("Player %d", e.nameSeq),
		JoinedAt: e.clock.Now(),
	}
	e.players = append(e.players, player)

	e.logger.Info("player joined",
		slog.String("player", player.Name),
		slog.Int("player_count", len(e.players)),
	)

	var notices []model.Notice
	for _, p := range e.players {
		if p.ID == player.ID {
			continue
		}
		notices = append(notices, model.Notice{
			To:   p.ID,
			Kind: model.NoticePlayerJoined,
			Payload: model.PlayerJoinedPayload{
				PlayerName:  player.Name,
				PlayerCount: len(e.players),
			},
		})
	}

	switch {
	case e.state == model.SessionStateWaiting && len(e.players) >= e.cfg.MinPlayers:
		notices = append(notices, e.startRoundLocked()...)
	case e.state == model.SessionStateWaiting:
		notices = append(notices, model.Notice{
			To:   player.ID,
			Kind: model.NoticeWaitingForPlayers,
		})
	default:
		// Joined mid-round: the player takes part with a fresh attempt
		// counter and gets the turn when the pointer reaches them
		notices = append(notices, model.Notice{
			To:      player.ID,
			Kind:    model.NoticeAwaitTurn,
			Payload: model.AwaitTurnPayload{PlayerName: e.players[e.turn].Name},
		})
	}

	return snapshotPlayer(player), notices, nil
}

// Leave removes a player. It is idempotent and safe to call concurrently
// with turn evaluation: removal and turn repair happen atomically under
// the engine lock.
func (e *Engine) Leave(ctx context.Context, id model.PlayerID) []model.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOfLocked(id)
	if idx < 0 {
		return nil
	}

	leaving := e.players[idx]
	wasCurrent := e.state == model.SessionStateRoundActive && idx == e.turn
	e.players = append(e.players[:idx], e.players[idx+1:]...)

	e.logger.Info("player left",
		slog.String("player", leaving.Name),
		slog.Int("player_count", len(e.players)),
	)

	var notices []model.Notice
	for _, p := range e.players {
		notices = append(notices, model.Notice{
			To:      p.ID,
			Kind:    model.NoticePlayerLeft,
			Payload: model.PlayerLeftPayload{PlayerName: leaving.Name},
		})
	}

	if len(e.players) == 0 {
		e.resetToWaitingLocked()
		e.nameSeq = 0
		return nil
	}

	if e.state != model.SessionStateRoundActive {
		return notices
	}

	if len(e.players) < e.cfg.MinPlayers {
		// Round abandoned without a result
		e.logger.Info("round abandoned", slog.Int("player_count", len(e.players)))
		e.resetToWaitingLocked()
		notices = append(notices, e.broadcastLocked(model.NoticeWaitingForPlayers, nil)...)
		return notices
	}

	// Repair the turn pointer so it never dangles. Removing a player
	// below the pointer shifts it down without changing whose turn it
	// is; removing the current player hands the turn to the next one.
	if idx < e.turn {
		e.turn--
	} else if wasCurrent {
		if e.turn >= len(e.players) {
			e.turn = 0
		}
		if e.allExhaustedLocked() {
			notices = append(notices, e.endRoundLocked(ctx, nil)...)
			return notices
		}
		e.skipExhaustedLocked()
		e.bumpTurnLocked()
		notices = append(notices, e.turnNoticesLocked()...)
	}

	return notices
}

// Guess evaluates a raw guess token from the given player. User errors
// (out of turn, malformed token) produce a notice to the sender and leave
// all round state untouched.
func (e *Engine) Guess(ctx context.Context, id model.PlayerID, raw string) []model.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOfLocked(id)
	if idx < 0 {
		return nil
	}
	player := e.players[idx]

	if e.state != model.SessionStateRoundActive {
		return []model.Notice{{To: id, Kind: model.NoticeWaitingForPlayers}}
	}

	if idx != e.turn {
		return []model.Notice{{To: id, Kind: model.NoticeNotYourTurn}}
	}

	guess := e.secrets.Normalize(raw)
	if err := e.secrets.Validate(guess); err != nil {
		return []model.Notice{{
			To:      id,
			Kind:    model.NoticeInvalidGuess,
			Payload: model.InvalidGuessPayload{CodeLength: e.secrets.CodeLength()},
		}}
	}

	player.Attempts++

	if guess == e.secretCode {
		return e.endRoundLocked(ctx, player)
	}

	exact, partial := e.scorer.Score(e.secretCode, guess)
	notices := []model.Notice{{
		To:      id,
		Kind:    model.NoticeGuessResult,
		Payload: model.GuessResultPayload{Exact: exact, Partial: partial},
	}}

	if player.Attempts >= e.cfg.MaxAttempts {
		player.Exhausted = true
		notices = append(notices, model.Notice{To: id, Kind: model.NoticeAttemptsExhausted})
	}

	if e.allExhaustedLocked() {
		notices = append(notices, e.endRoundLocked(ctx, nil)...)
		return notices
	}

	// Exactly one advance per evaluated guess; exhausted players are
	// skipped by the advance itself rather than via a second advance
	e.advanceTurnLocked()
	notices = append(notices, e.turnNoticesLocked()...)

	return notices
}

// Snapshot returns an immutable view of the session
func (e *Engine) Snapshot() model.SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := model.SessionSnapshot{
		State:       e.state,
		Players:     make([]model.PlayerSnapshot, 0, len(e.players)),
		TurnIndex:   e.turn,
		CodeLength:  e.secrets.CodeLength(),
		MaxAttempts: e.cfg.MaxAttempts,
	}
	for _, p := range e.players {
		snap.Players = append(snap.Players, snapshotPlayer(p))
	}
	if e.state == model.SessionStateRoundActive {
		snap.CurrentPlayer = e.players[e.turn].Name
		snap.RoundStartedAt = e.roundStart
	}
	return snap
}

// startRoundLocked begins a fresh round: new secret, zeroed attempt
// counters, turn pointer at the first player.
func (e *Engine) startRoundLocked() []model.Notice {
	e.secretCode = e.secrets.Generate()
	e.roundStart = e.clock.Now()
	e.state = model.SessionStateRoundActive
	e.turn = 0
	for _, p := range e.players {
		p.Attempts = 0
		p.Exhausted = false
	}
	e.bumpTurnLocked()

	e.logger.Info("round started", slog.Int("player_count", len(e.players)))
	e.logger.Debug("secret generated", slog.String("secret", e.secretCode))

	notices := e.broadcastLocked(model.NoticeRoundStarted, model.RoundStartedPayload{
		PlayerCount: len(e.players),
		CodeLength:  e.secrets.CodeLength(),
	})
	return append(notices, e.turnNoticesLocked()...)
}

// endRoundLocked finishes the active round, records the result
// best-effort, and either starts the next round or drops back to waiting.
// A nil winner means every player ran out of attempts.
func (e *Engine) endRoundLocked(ctx context.Context, winner *model.Player) []model.Notice {
	result := &model.RoundResult{
		StartTime:  e.roundStart,
		EndTime:    e.clock.Now(),
		SecretCode: e.secretCode,
	}
	for _, p := range e.players {
		result.PlayerResults = append(result.PlayerResults, model.PlayerResult{
			PlayerName: p.Name,
			Attempts:   p.Attempts,
		})
	}

	var notices []model.Notice
	if winner != nil {
		result.Winner = winner.Name
		notices = append(notices, model.Notice{To: winner.ID, Kind: model.NoticeRoundWon})
		for _, p := range e.players {
			if p.ID == winner.ID {
				continue
			}
			notices = append(notices, model.Notice{
				To:      p.ID,
				Kind:    model.NoticeRoundLost,
				Payload: model.RoundWonPayload{Winner: winner.Name},
			})
		}
	} else {
		notices = append(notices, e.broadcastLocked(model.NoticeRoundDrawn, model.RoundDrawnPayload{
			SecretCode: e.secretCode,
		})...)
	}

	// Persistence is best-effort: the outcome is announced regardless
	if err := e.recorder.RecordRound(ctx, result); err != nil {
		e.logger.Error("failed to record round result", slog.String("error", err.Error()))
	}
	e.logger.Info("round completed",
		slog.String("winner", result.Winner),
		slog.Int("player_count", len(e.players)),
	)

	if len(e.players) >= e.cfg.MinPlayers {
		notices = append(notices, e.startRoundLocked()...)
	} else {
		e.resetToWaitingLocked()
		notices = append(notices, e.broadcastLocked(model.NoticeWaitingForPlayers, nil)...)
	}
	return notices
}

// broadcastLocked emits one notice per registered player, in player
// order. Notices always name an explicit recipient so the transport
// never delivers to a connection the engine does not know about.
func (e *Engine) broadcastLocked(kind model.NoticeKind, payload any) []model.Notice {
	notices := make([]model.Notice, 0, len(e.players))
	for _, p := range e.players {
		notices = append(notices, model.Notice{To: p.ID, Kind: kind, Payload: payload})
	}
	return notices
}

// advanceTurnLocked moves the turn pointer to the next non-exhausted
// player. Callers must ensure at least one player is not exhausted.
func (e *Engine) advanceTurnLocked() {
	e.turn = (e.turn + 1) % len(e.players)
	e.skipExhaustedLocked()
	e.bumpTurnLocked()
}

// skipExhaustedLocked walks the pointer forward past exhausted players
func (e *Engine) skipExhaustedLocked() {
	for range e.players {
		if !e.players[e.turn].Exhausted {
			return
		}
		e.turn = (e.turn + 1) % len(e.players)
	}
}

func (e *Engine) allExhaustedLocked() bool {
	for _, p := range e.players {
		if !p.Exhausted {
			return false
		}
	}
	return len(e.players) > 0
}

// turnNoticesLocked tells every player whose move it is, in player order
func (e *Engine) turnNoticesLocked() []model.Notice {
	current := e.players[e.turn]
	notices := make([]model.Notice, 0, len(e.players))
	for i, p := range e.players {
		if i == e.turn {
			notices = append(notices, model.Notice{To: p.ID, Kind: model.NoticeYourTurn})
		} else {
			notices = append(notices, model.Notice{
				To:      p.ID,
				Kind:    model.NoticeAwaitTurn,
				Payload: model.AwaitTurnPayload{PlayerName: current.Name},
			})
		}
	}
	return notices
}

func (e *Engine) resetToWaitingLocked() {
	e.state = model.SessionStateWaiting
	e.secretCode = ""
	e.turn = 0
	e.turnGen++
	e.stopTurnTimerLocked()
}

// bumpTurnLocked invalidates any pending forfeit timer and, when a
// timeout is configured, schedules a new one for the current turn
func (e *Engine) bumpTurnLocked() {
	e.turnGen++
	e.stopTurnTimerLocked()
	if e.cfg.TurnTimeout <= 0 || e.state != model.SessionStateRoundActive {
		return
	}
	gen := e.turnGen
	e.turnTimer = e.clock.AfterFunc(e.cfg.TurnTimeout, func() {
		e.forfeitTurn(gen)
	})
}

func (e *Engine) stopTurnTimerLocked() {
	if e.turnTimer != nil {
		e.turnTimer.Stop()
		e.turnTimer = nil
	}
}

// forfeitTurn fires when the current player let the turn timer lapse. The
// lapsed turn counts as a used attempt. A stale generation means a valid
// guess already advanced the turn, so the firing is ignored.
func (e *Engine) forfeitTurn(gen int) {
	e.mu.Lock()

	if gen != e.turnGen || e.state != model.SessionStateRoundActive {
		e.mu.Unlock()
		return
	}

	player := e.players[e.turn]
	player.Attempts++

	e.logger.Info("turn forfeited", slog.String("player", player.Name))

	var notices []model.Notice
	if player.Attempts >= e.cfg.MaxAttempts {
		player.Exhausted = true
		notices = append(notices, model.Notice{To: player.ID, Kind: model.NoticeAttemptsExhausted})
	}

	if e.allExhaustedLocked() {
		notices = append(notices, e.endRoundLocked(context.Background(), nil)...)
	} else {
		e.advanceTurnLocked()
		notices = append(notices, e.turnNoticesLocked()...)
	}

	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify(notices)
	}
}

func (e *Engine) indexOfLocked(id model.PlayerID) int {
	for i, p := range e.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func snapshotPlayer(p *model.Player) model.PlayerSnapshot {
	return model.PlayerSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Attempts:  p.Attempts,
		Exhausted: p.Exhausted,
	}
}
