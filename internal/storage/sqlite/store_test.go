package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codemaster-go/internal/model"
)

type StoreSuite struct {
	suite.Suite
	path  string
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "results.db")
	store, err := New(s.path)
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *StoreSuite) TestListEmpty() {
	rounds, err := s.store.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Empty(rounds)
}

func (s *StoreSuite) TestRecordAndList() {
	result := &model.RoundResult{
		StartTime:  time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 4, 2, 18, 9, 0, 0, time.UTC),
		SecretCode: "9ZZ9",
		Winner:     "Player 3",
		PlayerResults: []model.PlayerResult{
			{PlayerName: "Player 1", Attempts: 7},
			{PlayerName: "Player 2", Attempts: 6},
			{PlayerName: "Player 3", Attempts: 7},
		},
	}

	s.Require().NoError(s.store.RecordRound(s.ctx, result))

	rounds, err := s.store.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Equal("9ZZ9", rounds[0].SecretCode)
	s.Equal("Player 3", rounds[0].Winner)
	s.Require().Len(rounds[0].PlayerResults, 3)
	s.Equal("Player 1", rounds[0].PlayerResults[0].PlayerName)
	s.Equal(7, rounds[0].PlayerResults[0].Attempts)
}

func (s *StoreSuite) TestRecordKeepsCompletionOrder() {
	for _, code := range []string{"AAAA", "BBBB", "CCCC"} {
		s.Require().NoError(s.store.RecordRound(s.ctx, &model.RoundResult{
			StartTime:  time.Now(),
			EndTime:    time.Now(),
			SecretCode: code,
		}))
	}

	rounds, err := s.store.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rounds, 3)
	s.Equal("AAAA", rounds[0].SecretCode)
	s.Equal("CCCC", rounds[2].SecretCode)
}

func (s *StoreSuite) TestDrawnRoundHasEmptyWinner() {
	s.Require().NoError(s.store.RecordRound(s.ctx, &model.RoundResult{
		StartTime:  time.Now(),
		EndTime:    time.Now(),
		SecretCode: "DDDD",
		PlayerResults: []model.PlayerResult{
			{PlayerName: "Player 1", Attempts: 10},
			{PlayerName: "Player 2", Attempts: 10},
		},
	}))

	rounds, err := s.store.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Empty(rounds[0].Winner)
}

func (s *StoreSuite) TestReopenSeesRecordedRounds() {
	s.Require().NoError(s.store.RecordRound(s.ctx, &model.RoundResult{
		StartTime:  time.Now(),
		EndTime:    time.Now(),
		SecretCode: "EEEE",
	}))
	s.Require().NoError(s.store.Close())

	reopened, err := New(s.path)
	s.Require().NoError(err)
	defer func() { _ = reopened.Close() }()

	rounds, err := reopened.ListRounds(s.ctx)
	s.Require().NoError(err)
	s.Len(rounds, 1)
	s.store = nil
}
