package carousel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Hub tracks the live players so control requests can find them by id.
// Closing the hub stops every player, including ones spawned afterwards.
type Hub struct {
	mu      sync.RWMutex
	players map[string]*Player

	done   context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	done, cancel := context.WithCancel(context.Background())
	return &Hub{players: make(map[string]*Player), done: done, cancel: cancel}
}

// Spawn starts a player for d and registers it under a fresh id. The player
// stops and is removed from the hub when ctx ends or the hub is closed.
func (h *Hub) Spawn(ctx context.Context, pos Position, d Driver) *Player {
	p := NewPlayer(uuid.NewString(), pos, d)
	h.mu.Lock()
	h.players[p.ID()] = p
	h.mu.Unlock()

	runCtx, stop := context.WithCancel(ctx)
	unlink := context.AfterFunc(h.done, stop)
	go func() {
		p.Run(runCtx)
		unlink()
		stop()
		h.mu.Lock()
		delete(h.players, p.ID())
		h.mu.Unlock()
	}()
	return p
}

// Get returns the live player with the given id.
func (h *Hub) Get(id string) (*Player, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.players[id]
	return p, ok
}

// Len is the number of live players.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.players)
}

// Close stops all live players. Their frame channels close, which ends any
// stream that is reading them.
func (h *Hub) Close() {
	h.cancel()
}
