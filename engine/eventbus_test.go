package engine

import (
	"context"
	"testing"
	"time"

	"memorymatch/core"
)

func sampleEvent() core.Event {
	return core.NewScoreSubmitted(core.Record{ID: "r1", Score: core.Score{Name: "u", Seconds: 12, Moves: 7, Difficulty: core.DifficultyEasy}})
}

func TestEventBusSync(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), sampleEvent())
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	unsub := bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { count++ })
	unsub()
	bus.Publish(context.Background(), sampleEvent())
	if count != 0 {
		t.Fatalf("want 0 got %d", count)
	}
}

func TestEventBusAsync(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { close(ch) })
	bus.Publish(context.Background(), sampleEvent())
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
