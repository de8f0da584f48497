package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/codemaster-go/internal/dependencies/clock"
	"github.com/mcoot/codemaster-go/internal/dependencies/random"
	"github.com/mcoot/codemaster-go/internal/services/scoring"
	"github.com/mcoot/codemaster-go/internal/services/secret"
	"github.com/mcoot/codemaster-go/internal/services/session"
	"github.com/mcoot/codemaster-go/internal/storage"
	"github.com/mcoot/codemaster-go/internal/storage/file"
	"github.com/mcoot/codemaster-go/internal/storage/memory"
	redisstorage "github.com/mcoot/codemaster-go/internal/storage/redis"
	"github.com/mcoot/codemaster-go/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.ResultStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	SecretGenerator *secret.Generator
	ScoringService  *scoring.Service
	Engine          *session.Engine
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// SessionConfig holds the session rules; zero fields use defaults
	SessionConfig session.Config
	// CodeLength is the secret code length; zero uses the default
	CodeLength int
	// StorageType selects the result store backend
	// ("memory", "file", "redis" or "sqlite"); empty defaults to "memory"
	StorageType string
	// FilePath is the results file path (required if StorageType is "file")
	FilePath string
	// SQLitePath is the database path (required if StorageType is "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create the result store based on type
	var store storage.ResultStore
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.FilePath == "" {
			return nil, errors.New("FilePath required when StorageType is file")
		}
		fileStore, err := file.New(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'file', 'redis' or 'sqlite'", storageType)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(cfg, store, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, store storage.ResultStore, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	generator := secret.New(rnd, cfg.CodeLength)
	scorer := scoring.New()
	engine := session.NewEngine(cfg.SessionConfig, generator, scorer, store, clk, logger)

	return &App{
		Store:           store,
		Clock:           clk,
		Random:          rnd,
		SecretGenerator: generator,
		ScoringService:  scorer,
		Engine:          engine,
	}
}
