package server

import (
	"sync"

	"github.com/maroulf/gridlords/internal/event"
)

// room fans one game's event stream out to its connected clients.
type room struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newRoom() *room {
	return &room{clients: make(map[*client]struct{})}
}

// broadcast is the game's event sink: it pushes the event to every
// client and drops clients whose queue is full.
func (r *room) broadcast(e event.Event) {
	r.mu.Lock()
	var dead []*client
	for c := range r.clients {
		if !c.push(e) {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		delete(r.clients, c)
	}
	r.mu.Unlock()

	for _, c := range dead {
		c.close()
	}
}

func (r *room) add(c *client) {
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
}

func (r *room) remove(c *client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
	c.close()
}

// closeAll disconnects every client, e.g. when the game is torn down.
func (r *room) closeAll() {
	r.mu.Lock()
	clients := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[*client]struct{})
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
