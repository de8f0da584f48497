package server

import (
	"log/slog"
	"sync"

	"github.com/mcoot/codemaster-go/internal/model"
)

// Registry tracks connected clients and fans session notices out to
// their sockets. It holds connection handles only; all game state lives
// in the session engine.
type Registry struct {
	mu     sync.RWMutex
	conns  map[model.PlayerID]*Conn
	logger *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[model.PlayerID]*Conn),
		logger: logger,
	}
}

// Add registers a connection under its player identity
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
}

// Remove forgets a connection. Idempotent; the connection itself is
// closed by its owner.
func (r *Registry) Remove(id model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Dispatch renders notices onto protocol lines and enqueues them to the
// targeted connections. Called after the engine lock is released.
func (r *Registry) Dispatch(notices []model.Notice) {
	for _, n := range notices {
		line := Render(n)
		if line == "" {
			continue
		}
		if n.Broadcast() {
			r.mu.RLock()
			targets := make([]*Conn, 0, len(r.conns))
			for _, c := range r.conns {
				targets = append(targets, c)
			}
			r.mu.RUnlock()
			for _, c := range targets {
				c.Enqueue(line)
			}
			continue
		}

		r.mu.RLock()
		c := r.conns[n.To]
		r.mu.RUnlock()
		if c != nil {
			c.Enqueue(line)
		}
	}
}

// CloseAll closes every registered connection
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[model.PlayerID]*Conn)
	r.mu.Unlock()

	r.logger.Debug("closing all connections", slog.Int("count", len(conns)))
	for _, c := range conns {
		c.Close()
	}
}
