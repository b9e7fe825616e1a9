package engine

import (
	"context"
	"sync"
)

// RequestGuard implements last-request-wins per key. Starting a request
// cancels the previous in-flight one for the same key, and a finished
// request can check whether it is still the newest before publishing its
// result.
type RequestGuard struct {
	mu    sync.Mutex
	seq   uint64
	slots map[string]guardSlot
}

type guardSlot struct {
	token  uint64
	cancel context.CancelFunc
}

type Ticket struct {
	Key   string
	Token uint64
}

func NewRequestGuard() *RequestGuard {
	return &RequestGuard{slots: make(map[string]guardSlot)}
}

// Begin registers a new request for key. The returned context is cancelled
// when a newer request for the same key begins or when done is called.
func (g *RequestGuard) Begin(ctx context.Context, key string) (context.Context, Ticket, func()) {
	ctx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	g.seq++
	t := Ticket{Key: key, Token: g.seq}
	if prev, ok := g.slots[key]; ok {
		prev.cancel()
	}
	g.slots[key] = guardSlot{token: t.Token, cancel: cancel}
	g.mu.Unlock()

	done := func() {
		g.mu.Lock()
		if s, ok := g.slots[key]; ok && s.token == t.Token {
			delete(g.slots, key)
		}
		g.mu.Unlock()
		cancel()
	}
	return ctx, t, done
}

// Current reports whether t is still the newest request for its key.
func (g *RequestGuard) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[t.Key]
	return ok && s.token == t.Token
}
