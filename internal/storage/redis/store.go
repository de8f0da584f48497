package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/storage"
)

// Store is a Redis-backed implementation of the result store. Rounds
// live in a single list key, pushed in completion order.
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis store and verifies the connection
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Store implements the interface
var _ storage.ResultStore = (*Store)(nil)

// RecordRound appends a finished round to the results list
func (s *Store) RecordRound(ctx context.Context, result *model.RoundResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	key := resultsKey()

	// Push and refresh the TTL in one round trip
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	if s.cfg.ResultsTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.ResultsTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ListRounds returns all recorded rounds in append order
func (s *Store) ListRounds(ctx context.Context) ([]*model.RoundResult, error) {
	values, err := s.client.LRange(ctx, resultsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rounds := make([]*model.RoundResult, 0, len(values))
	for _, val := range values {
		var result model.RoundResult
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			continue // Skip invalid entries rather than failing the listing
		}
		rounds = append(rounds, &result)
	}
	return rounds, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
