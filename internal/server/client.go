package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maroulf/gridlords/internal/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 64 << 10

	// outbound queue; a client that cannot drain it is dropped
	sendBuffer = 256
)

// client is one websocket connection watching (and possibly playing)
// a game.
type client struct {
	conn   *websocket.Conn
	player string // empty for spectators
	send   chan []byte
	done   chan struct{}

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, player string) *client {
	return &client{
		conn:   conn,
		player: player,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// push queues an event for delivery. A full queue kills the client
// rather than blocking the game loop.
func (c *client) push(e event.Event) bool {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("encode event", "event", e.Name, "error", err)
		return true
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		slog.Warn("client send queue full, dropping connection", "player", c.player)
		return false
	}
}

// writePump drains the send queue onto the connection and keeps it
// alive with pings. It exits when the queue closes or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// close releases the client. Idempotent.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.conn.Close()
}
