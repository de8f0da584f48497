package server

import (
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/codemaster-go/internal/model"
)

const (
	// sendQueueSize bounds the per-connection outbound queue
	sendQueueSize = 16
	// writeTimeout caps how long a single line write may block
	writeTimeout = 30 * time.Second
)

// Conn wraps a client socket with an ordered outbound queue. A dedicated
// writer goroutine serializes writes so a slow client never blocks game
// dispatch; a full queue or a failed write closes the connection, which
// routes the client through the same disconnect path as a failed read.
type Conn struct {
	id        model.PlayerID
	nc        net.Conn
	sendCh    chan string
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func newConn(id model.PlayerID, nc net.Conn, logger *slog.Logger) *Conn {
	c := &Conn{
		id:     id,
		nc:     nc,
		sendCh: make(chan string, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.writeLoop()
	return c
}

// Enqueue hands a line to the writer goroutine. It never blocks: send
// errors are swallowed with respect to the caller, and a client that
// cannot drain its queue is dropped.
func (c *Conn) Enqueue(line string) {
	select {
	case c.sendCh <- line:
	case <-c.done:
	default:
		c.logger.Warn("send queue full, dropping client",
			slog.String("player_id", string(c.id)),
		)
		c.Close()
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case line := <-c.sendCh:
			_ = c.nc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := io.WriteString(c.nc, line+"\n"); err != nil {
				c.logger.Debug("write failed",
					slog.String("player_id", string(c.id)),
					slog.String("error", err.Error()),
				)
				c.Close()
				return
			}
		}
	}
}

// Close shuts the socket down. Idempotent and safe to call from any
// goroutine; the blocked read loop unblocks with an error.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.nc.Close()
	})
}
