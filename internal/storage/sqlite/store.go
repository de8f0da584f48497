package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// Store is a SQLite-backed implementation of the result store
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	start_time  TIMESTAMP NOT NULL,
	end_time    TIMESTAMP NOT NULL,
	secret_code TEXT NOT NULL,
	winner      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS round_players (
	round_id    INTEGER NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
	player_name TEXT NOT NULL,
	attempts    INTEGER NOT NULL
);
`

// New opens (and creates if missing) a SQLite store at the given path.
// WAL journaling and a busy timeout keep concurrent readers from tripping
// over round writes.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Ensure Store implements the interface
var _ storage.ResultStore = (*Store)(nil)

// RecordRound appends a finished round and its per-player tallies in one
// transaction
func (s *Store) RecordRound(ctx context.Context, result *model.RoundResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rounds (start_time, end_time, secret_code, winner) VALUES (?, ?, ?, ?)`,
		result.StartTime, result.EndTime, result.SecretCode, result.Winner,
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}

	roundID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("round id: %w", err)
	}

	for _, pr := range result.PlayerResults {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO round_players (round_id, player_name, attempts) VALUES (?, ?, ?)`,
			roundID, pr.PlayerName, pr.Attempts,
		); err != nil {
			return fmt.Errorf("insert player result: %w", err)
		}
	}

	return tx.Commit()
}

// ListRounds returns all recorded rounds in completion order
func (s *Store) ListRounds(ctx context.Context) ([]*model.RoundResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, end_time, secret_code, winner FROM rounds ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rounds []*model.RoundResult
	var ids []int64
	for rows.Next() {
		var id int64
		result := &model.RoundResult{}
		if err := rows.Scan(&id, &result.StartTime, &result.EndTime, &result.SecretCode, &result.Winner); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rounds = append(rounds, result)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		players, err := s.listPlayers(ctx, id)
		if err != nil {
			return nil, err
		}
		rounds[i].PlayerResults = players
	}

	return rounds, nil
}

func (s *Store) listPlayers(ctx context.Context, roundID int64) ([]model.PlayerResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_name, attempts FROM round_players WHERE round_id = ? ORDER BY rowid`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("query player results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []model.PlayerResult
	for rows.Next() {
		var pr model.PlayerResult
		if err := rows.Scan(&pr.PlayerName, &pr.Attempts); err != nil {
			return nil, fmt.Errorf("scan player result: %w", err)
		}
		players = append(players, pr)
	}
	return players, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
