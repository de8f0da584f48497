package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/codemaster-go/internal/model"
	"github.com/mcoot/codemaster-go/internal/services/session"
)

// Config holds the TCP listener settings
type Config struct {
	// Addr is the listen address in host:port form
	Addr string
}

// DefaultConfig returns the standard listener settings
func DefaultConfig() Config {
	return Config{
		Addr: ":5000",
	}
}

// Server accepts client connections and bridges the line protocol onto
// the session engine. Each connection is one player: a joined player's
// guesses arrive as lines, and session notices flow back through the
// registry.
type Server struct {
	cfg      Config
	engine   *session.Engine
	registry *Registry
	logger   *slog.Logger

	listener net.Listener
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewServer creates a game server around the given engine and installs
// the registry as the engine's notice sink
func NewServer(cfg Config, engine *session.Engine, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		registry: NewRegistry(logger),
		logger:   logger,
	}
	engine.SetNotifier(s.registry.Dispatch)
	return s
}

// Listen binds the configured address. Split from Serve so callers can
// bind port 0 and read the assigned address before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.logger.Info("game server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until Shutdown closes the listener
func (s *Server) Serve() error {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(nc)
		}()
	}
}

// ListenAndServe binds and serves in one call
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting, drops every client and waits for connection
// handlers to finish or the context to expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.registry.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConn owns one client for its whole lifetime: register, join the
// session, pump guess lines, and leave on disconnect
func (s *Server) handleConn(nc net.Conn) {
	ctx := context.Background()
	id := model.PlayerID(uuid.NewString())
	c := newConn(id, nc, s.logger)

	s.logger.Debug("client connected",
		slog.String("player_id", string(id)),
		slog.String("remote", nc.RemoteAddr().String()),
	)

	// Register before joining so every notice the join produces has a
	// live connection to land on
	s.registry.Add(c)

	snap, notices, err := s.engine.Join(ctx, id)
	if err != nil {
		s.registry.Remove(id)
		if errors.Is(err, model.ErrGameFull) {
			// Nothing has been enqueued yet, so a direct write does not
			// race the writer goroutine
			_ = nc.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, _ = io.WriteString(nc, Render(model.Notice{Kind: model.NoticeServerFull})+"\n")
		} else {
			s.logger.Error("failed to join session",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
		c.Close()
		return
	}
	s.registry.Dispatch(notices)

	scanner := bufio.NewScanner(nc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.registry.Dispatch(s.engine.Guess(ctx, id, line))
	}

	s.logger.Debug("client disconnected",
		slog.String("player", snap.Name),
		slog.String("player_id", string(id)),
	)

	s.registry.Remove(id)
	c.Close()
	s.registry.Dispatch(s.engine.Leave(ctx, id))
}
