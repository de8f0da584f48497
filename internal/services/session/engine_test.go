package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codemaster-go/internal/dependencies/mocks"
	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/services/scoring"
	"github.com/mcoot/codemaster-go/internal/services/secret"
	"github.com/mcoot/codemaster-go/internal/storage/memory"
)

type EngineSuite struct {
	suite.Suite
	store   *memory.Store
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	engine  *Engine
	ctx     context.Context
	connSeq int
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.setupEngine(DefaultConfig())
}

func (s *EngineSuite) setupEngine(cfg Config) {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	generator := secret.New(s.random, secret.DefaultCodeLength)
	s.engine = NewEngine(cfg, generator, scoring.New(), s.store, s.clock, logger)
	s.ctx = context.Background()
	s.connSeq = 0
}

// join registers a player under a fresh connection identity
func (s *EngineSuite) join() (model.PlayerSnapshot, []model.Notice) {
	s.connSeq++
	id := model.PlayerID(fmt.Sprintf("conn-%d", s.connSeq))
	player, notices, err := s.engine.Join(s.ctx, id)
	s.Require().NoError(err)
	return player, notices
}

func kindsFor(notices []model.Notice, id model.PlayerID) []model.NoticeKind {
	var kinds []model.NoticeKind
	for _, n := range notices {
		if n.Broadcast() || n.To == id {
			kinds = append(kinds, n.Kind)
		}
	}
	return kinds
}

func hasKind(notices []model.Notice, id model.PlayerID, kind model.NoticeKind) bool {
	for _, k := range kindsFor(notices, id) {
		if k == kind {
			return true
		}
	}
	return false
}

// Join / round start

func (s *EngineSuite) TestFirstPlayerWaits() {
	p1, notices := s.join()

	s.Equal("Player 1", p1.Name)
	s.True(hasKind(notices, p1.ID, model.NoticeWaitingForPlayers))
	s.Equal(model.SessionStateWaiting, s.engine.Snapshot().State)
}

func (s *EngineSuite) TestSecondPlayerStartsRound() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, notices := s.join()

	snap := s.engine.Snapshot()
	s.Equal(model.SessionStateRoundActive, snap.State)
	s.Equal(0, snap.TurnIndex)
	s.Equal("Player 1", snap.CurrentPlayer)

	// One message per player, in player order: round start to all, then
	// turn prompt to the current player and waiting to the rest
	s.True(hasKind(notices, p1.ID, model.NoticeRoundStarted))
	s.True(hasKind(notices, p2.ID, model.NoticeRoundStarted))
	s.True(hasKind(notices, p1.ID, model.NoticeYourTurn))
	s.True(hasKind(notices, p2.ID, model.NoticeAwaitTurn))
}

func (s *EngineSuite) TestCapacityCeilingRejectsFifthPlayer() {
	s.random.QueueCode("AB12")
	for i := 0; i < 4; i++ {
		s.join()
	}

	_, _, err := s.engine.Join(s.ctx, "conn-overflow")
	s.ErrorIs(err, model.ErrGameFull)
	s.Len(s.engine.Snapshot().Players, 4)
}

func (s *EngineSuite) TestMidRoundJoinerParticipates() {
	s.random.QueueCode("AB12")
	s.join()
	s.join()

	p3, notices := s.join()
	s.True(hasKind(notices, p3.ID, model.NoticeAwaitTurn))

	snap := s.engine.Snapshot()
	s.Equal(model.SessionStateRoundActive, snap.State)
	s.Len(snap.Players, 3)
	s.Equal(0, snap.Players[2].Attempts)
}

// Guess evaluation

func (s *EngineSuite) TestWrongGuessScoresAndAdvancesOnce() {
	s.random.QueueCode("AABB")
	p1, _ := s.join()
	p2, _ := s.join()

	notices := s.engine.Guess(s.ctx, p1.ID, "abab")

	var result model.GuessResultPayload
	for _, n := range notices {
		if n.Kind == model.NoticeGuessResult {
			s.Equal(p1.ID, n.To)
			result = n.Payload.(model.GuessResultPayload)
		}
	}
	s.Equal(2, result.Exact)
	s.Equal(2, result.Partial)

	snap := s.engine.Snapshot()
	s.Equal(1, snap.TurnIndex)
	s.Equal("Player 2", snap.CurrentPlayer)
	s.Equal(1, snap.Players[0].Attempts)
	s.True(hasKind(notices, p2.ID, model.NoticeYourTurn))
	s.True(hasKind(notices, p1.ID, model.NoticeAwaitTurn))
}

func (s *EngineSuite) TestTurnWrapsAroundPlayerList() {
	s.random.QueueCode("AAAA")
	p1, _ := s.join()
	p2, _ := s.join()

	s.engine.Guess(s.ctx, p1.ID, "BBBB")
	s.engine.Guess(s.ctx, p2.ID, "BBBB")

	snap := s.engine.Snapshot()
	s.Equal(0, snap.TurnIndex)
	s.Equal("Player 1", snap.CurrentPlayer)
}

func (s *EngineSuite) TestOutOfTurnGuessChangesNothing() {
	s.random.QueueCode("AB12")
	_, _ = s.join()
	p2, _ := s.join()

	before := s.engine.Snapshot()
	notices := s.engine.Guess(s.ctx, p2.ID, "AB12")

	s.True(hasKind(notices, p2.ID, model.NoticeNotYourTurn))

	after := s.engine.Snapshot()
	s.Equal(before.TurnIndex, after.TurnIndex)
	s.Equal(before.Players, after.Players)
	s.Equal(model.SessionStateRoundActive, after.State)
}

func (s *EngineSuite) TestMalformedGuessChangesNothing() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	s.join()

	for _, raw := range []string{"ABC", "ABCDE", "AB-1", ""} {
		notices := s.engine.Guess(s.ctx, p1.ID, raw)
		s.True(hasKind(notices, p1.ID, model.NoticeInvalidGuess), "guess %q", raw)
	}

	snap := s.engine.Snapshot()
	s.Equal(0, snap.TurnIndex)
	s.Equal(0, snap.Players[0].Attempts)
}

func (s *EngineSuite) TestGuessNormalizedBeforeComparison() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	s.random.QueueCode("XXXX") // secret for the follow-up round
	s.join()

	notices := s.engine.Guess(s.ctx, p1.ID, "  ab12\r\n")
	s.True(hasKind(notices, p1.ID, model.NoticeRoundWon))
}

func (s *EngineSuite) TestGuessWhileWaitingRejected() {
	p1, _ := s.join()

	notices := s.engine.Guess(s.ctx, p1.ID, "AB12")
	s.True(hasKind(notices, p1.ID, model.NoticeWaitingForPlayers))
	s.Equal(0, s.engine.Snapshot().Players[0].Attempts)
}

// Winning

func (s *EngineSuite) TestWinningGuessAnnouncesRecordsAndRestarts() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()

	s.engine.Guess(s.ctx, p1.ID, "ZZZZ")

	s.random.QueueCode("CD34")
	notices := s.engine.Guess(s.ctx, p2.ID, "AB12")

	s.True(hasKind(notices, p2.ID, model.NoticeRoundWon))
	s.True(hasKind(notices, p1.ID, model.NoticeRoundLost))
	s.True(hasKind(notices, p1.ID, model.NoticeRoundStarted))

	rounds, err := s.store.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Equal("AB12", rounds[0].SecretCode)
	s.Equal("Player 2", rounds[0].Winner)
	s.ElementsMatch(rounds[0].PlayerResults, []model.PlayerResult{
		{PlayerName: "Player 1", Attempts: 1},
		{PlayerName: "Player 2", Attempts: 1},
	})

	// New round: fresh secret draw, counters reset, turn back to index 0
	snap := s.engine.Snapshot()
	s.Equal(model.SessionStateRoundActive, snap.State)
	s.Equal(0, snap.TurnIndex)
	s.Equal(0, snap.Players[0].Attempts)
	s.Equal(0, snap.Players[1].Attempts)

	win := s.engine.Guess(s.ctx, p1.ID, "CD34")
	s.True(hasKind(win, p1.ID, model.NoticeRoundWon), "new round uses the fresh secret")
}

func (s *EngineSuite) TestRoundResultTimestampsFromClock() {
	start := s.clock.Now()
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	s.join()

	s.clock.Advance(3 * time.Minute)
	s.random.QueueCode("CD34")
	s.engine.Guess(s.ctx, p1.ID, "AB12")

	rounds, _ := s.store.ListRounds(s.ctx)
	s.Require().Len(rounds, 1)
	s.True(rounds[0].StartTime.Equal(start))
	s.True(rounds[0].EndTime.Equal(start.Add(3 * time.Minute)))
}

// Attempt exhaustion

func (s *EngineSuite) TestExhaustedPlayerIsSkippedWithSingleAdvance() {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	cfg.MaxPlayers = 3
	s.setupEngine(cfg)

	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()
	p3, _ := s.join()

	notices := s.engine.Guess(s.ctx, p1.ID, "ZZZZ")
	s.True(hasKind(notices, p1.ID, model.NoticeAttemptsExhausted))

	// One advance only: the turn lands on Player 2, not Player 3
	snap := s.engine.Snapshot()
	s.Equal("Player 2", snap.CurrentPlayer)
	s.True(snap.Players[0].Exhausted)

	// After Player 3 misses, the pointer wraps and skips Player 1
	s.engine.Guess(s.ctx, p2.ID, "ZZZZ")
	notices = s.engine.Guess(s.ctx, p3.ID, "YYYY")

	// All three exhausted -> drawn round and a fresh start
	s.True(hasKind(notices, p2.ID, model.NoticeRoundDrawn))
}

func (s *EngineSuite) TestAllExhaustedEndsRoundWithNoWinner() {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	s.setupEngine(cfg)

	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()

	s.engine.Guess(s.ctx, p1.ID, "ZZZZ")
	s.random.QueueCode("CD34")
	notices := s.engine.Guess(s.ctx, p2.ID, "YYYY")

	var drawn model.RoundDrawnPayload
	for _, n := range notices {
		if n.Kind == model.NoticeRoundDrawn {
			drawn = n.Payload.(model.RoundDrawnPayload)
		}
	}
	s.Equal("AB12", drawn.SecretCode)

	rounds, _ := s.store.ListRounds(s.ctx)
	s.Require().Len(rounds, 1)
	s.Empty(rounds[0].Winner)

	// A fresh round started immediately
	snap := s.engine.Snapshot()
	s.Equal(model.SessionStateRoundActive, snap.State)
	s.False(snap.Players[0].Exhausted)
	s.Equal(0, snap.Players[0].Attempts)
}

// Leaving / disconnects

func (s *EngineSuite) TestLeaveIsIdempotent() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	s.join()

	s.engine.Leave(s.ctx, p1.ID)
	notices := s.engine.Leave(s.ctx, p1.ID)
	s.Nil(notices)
}

func (s *EngineSuite) TestLeaveBelowFloorAbandonsRound() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()

	notices := s.engine.Leave(s.ctx, p1.ID)

	s.True(hasKind(notices, p2.ID, model.NoticePlayerLeft))
	s.True(hasKind(notices, p2.ID, model.NoticeWaitingForPlayers))
	s.Equal(model.SessionStateWaiting, s.engine.Snapshot().State)

	// Abandoned rounds leave no result behind
	rounds, _ := s.store.ListRounds(s.ctx)
	s.Empty(rounds)
}

func (s *EngineSuite) TestCurrentPlayerLeavingAdvancesTurn() {
	cfg := DefaultConfig()
	s.setupEngine(cfg)

	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()
	p3, _ := s.join()

	notices := s.engine.Leave(s.ctx, p1.ID)

	snap := s.engine.Snapshot()
	s.Equal(model.SessionStateRoundActive, snap.State)
	s.Equal("Player 2", snap.CurrentPlayer)
	s.Equal(0, snap.TurnIndex)
	s.True(hasKind(notices, p2.ID, model.NoticeYourTurn))
	s.True(hasKind(notices, p3.ID, model.NoticeAwaitTurn))
}

func (s *EngineSuite) TestLeaveBelowTurnPointerKeepsCurrentPlayer() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()
	p3, _ := s.join()

	// Advance the turn to Player 2
	s.engine.Guess(s.ctx, p1.ID, "ZZZZ")
	s.Require().Equal("Player 2", s.engine.Snapshot().CurrentPlayer)

	s.engine.Leave(s.ctx, p1.ID)

	snap := s.engine.Snapshot()
	s.Equal("Player 2", snap.CurrentPlayer)
	s.Equal(0, snap.TurnIndex)
	_ = p2
	_ = p3
}

func (s *EngineSuite) TestLastPlayerAtTurnEndWrapsToFirst() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()
	p3, _ := s.join()

	// Turn on Player 3 (last), who then disconnects
	s.engine.Guess(s.ctx, p1.ID, "ZZZZ")
	s.engine.Guess(s.ctx, p2.ID, "ZZZZ")
	s.Require().Equal("Player 3", s.engine.Snapshot().CurrentPlayer)

	s.engine.Leave(s.ctx, p3.ID)

	snap := s.engine.Snapshot()
	s.Equal(0, snap.TurnIndex)
	s.Equal("Player 1", snap.CurrentPlayer)
}

func (s *EngineSuite) TestTurnIndexAlwaysInBounds() {
	s.random.QueueCode("AB12")
	var ids []model.PlayerID
	for i := 0; i < 4; i++ {
		p, _ := s.join()
		ids = append(ids, p.ID)
	}

	s.engine.Guess(s.ctx, ids[0], "ZZZZ")
	s.engine.Guess(s.ctx, ids[1], "ZZZZ")

	for _, id := range ids {
		s.engine.Leave(s.ctx, id)
		snap := s.engine.Snapshot()
		if len(snap.Players) > 0 {
			s.GreaterOrEqual(snap.TurnIndex, 0)
			s.Less(snap.TurnIndex, len(snap.Players))
		}
	}
}

func (s *EngineSuite) TestEmptyServerResetsNaming() {
	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()
	s.engine.Leave(s.ctx, p1.ID)
	s.engine.Leave(s.ctx, p2.ID)

	p, _ := s.join()
	s.Equal("Player 1", p.Name)
}

// Turn forfeit timer

func (s *EngineSuite) TestTurnTimeoutForfeitsAndAdvances() {
	cfg := DefaultConfig()
	cfg.TurnTimeout = 30 * time.Second
	s.setupEngine(cfg)

	var delivered []model.Notice
	s.engine.SetNotifier(func(notices []model.Notice) {
		delivered = append(delivered, notices...)
	})

	s.random.QueueCode("AB12")
	p1, _ := s.join()
	p2, _ := s.join()

	s.clock.Advance(30 * time.Second)

	snap := s.engine.Snapshot()
	s.Equal("Player 2", snap.CurrentPlayer)
	s.Equal(1, snap.Players[0].Attempts, "forfeit consumes an attempt")
	s.True(hasKind(delivered, p2.ID, model.NoticeYourTurn))
	_ = p1
}

func (s *EngineSuite) TestValidGuessCancelsForfeitTimer() {
	cfg := DefaultConfig()
	cfg.TurnTimeout = 30 * time.Second
	s.setupEngine(cfg)

	s.random.QueueCode("AB12")
	p1, _ := s.join()
	s.join()

	s.engine.Guess(s.ctx, p1.ID, "ZZZZ")

	// The old timer's generation is stale: advancing past its deadline
	// must not double-charge Player 1 or advance the turn again
	s.clock.Advance(30 * time.Second)

	snap := s.engine.Snapshot()
	s.Equal(1, snap.Players[0].Attempts)
}

func (s *EngineSuite) TestNoTimerWhenTimeoutDisabled() {
	s.random.QueueCode("AB12")
	s.join()
	s.join()

	s.clock.Advance(24 * time.Hour)

	snap := s.engine.Snapshot()
	s.Equal("Player 1", snap.CurrentPlayer)
	s.Equal(0, snap.Players[0].Attempts)
}
