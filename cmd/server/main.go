package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/codemaster-go/internal/factory"
	"github.com/mcoot/codemaster-go/internal/server"
	"github.com/mcoot/codemaster-go/internal/services/session"
	redisstorage "github.com/mcoot/codemaster-go/internal/storage/redis"
	"github.com/mcoot/codemaster-go/internal/status"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger: logger,
		SessionConfig: session.Config{
			MinPlayers:  envInt("MIN_PLAYERS", 0),
			MaxPlayers:  envInt("MAX_PLAYERS", 0),
			MaxAttempts: envInt("MAX_ATTEMPTS", 0),
			TurnTimeout: envDuration("TURN_TIMEOUT", 0),
		},
		CodeLength:  envInt("CODE_LENGTH", 0),
		StorageType: os.Getenv("STORAGE_TYPE"),
		FilePath:    os.Getenv("RESULTS_FILE"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Store.Close() }()

	// Create the TCP game server
	gameCfg := server.DefaultConfig()
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		gameCfg.Addr = addr
	}
	gameServer := server.NewServer(gameCfg, app.Engine, logger)

	// Create the status HTTP server
	statusRouter := status.NewRouter(status.RouterConfig{
		Logger: logger,
		Engine: app.Engine,
		Store:  app.Store,
	})
	statusCfg := status.DefaultServerConfig()
	statusCfg.Host = os.Getenv("STATUS_HOST")
	if port := envInt("STATUS_PORT", 0); port != 0 {
		statusCfg.Port = port
	}
	statusServer := status.NewServer(statusRouter, statusCfg, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start both servers
	errCh := make(chan error, 2)
	go func() {
		errCh <- gameServer.ListenAndServe()
	}()
	go func() {
		errCh <- statusServer.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := gameServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("game server shutdown error", slog.String("error", err.Error()))
		}
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

func logLevelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer env var", slog.String("key", key), slog.String("value", val))
		return defaultVal
	}
	return n
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("invalid duration env var", slog.String("key", key), slog.String("value", val))
		return defaultVal
	}
	return d
}
