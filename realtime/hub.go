package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"memorymatch/core"
)

type subscriber struct {
	ch         chan core.Event
	difficulty core.Difficulty
}

// Hub fans score events out to live leaderboard viewers. A subscriber may
// restrict itself to one difficulty; slow subscribers miss events instead of
// blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]subscriber
	next    int
	dropped atomic.Int64
}

func NewHub() *Hub { return &Hub{subs: map[int]subscriber{}} }

// Subscribe registers a viewer for every difficulty.
func (h *Hub) Subscribe(buffer int) (int, <-chan core.Event) {
	return h.SubscribeDifficulty(buffer, "")
}

// SubscribeDifficulty registers a viewer for d only; empty d means all.
func (h *Hub) SubscribeDifficulty(buffer int, d core.Difficulty) (int, <-chan core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	ch := make(chan core.Event, buffer)
	h.subs[id] = subscriber{ch: ch, difficulty: d}
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

// Len reports the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports how many deliveries were skipped on full buffers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (h *Hub) Broadcast(_ context.Context, ev core.Event) {
	// sends happen under the read lock so Unsubscribe cannot close a channel mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.difficulty != "" && s.difficulty != ev.Record.Difficulty {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// MarshalJSON is a helper to convert events to JSON bytes for WebSocket/SSE.
func MarshalJSON(ev core.Event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
