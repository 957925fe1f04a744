package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
)

func record(name string, d core.Difficulty) core.Record {
	return core.Record{ID: name + "-id", Score: core.Score{Name: name, Seconds: 30, Moves: 8, Difficulty: d}}
}

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)
	assert.Equal(t, 1, h.Len())

	h.Broadcast(context.Background(), core.NewScoreSubmitted(record("bob", core.DifficultyEasy)))

	received := <-ch
	assert.Equal(t, core.EventScoreSubmitted, received.Type)
	assert.Equal(t, "bob", received.Record.Name)

	h.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok, "channel closed after unsubscribe")
	assert.Equal(t, 0, h.Len())
}

func TestHubDifficultyFilter(t *testing.T) {
	h := NewHub()
	_, hard := h.SubscribeDifficulty(4, core.DifficultyHard)
	_, all := h.Subscribe(4)

	h.Broadcast(context.Background(), core.NewScoreSubmitted(record("a", core.DifficultyEasy)))
	h.Broadcast(context.Background(), core.NewScoreSubmitted(record("b", core.DifficultyHard)))

	require.Len(t, all, 2)
	require.Len(t, hard, 1)
	assert.Equal(t, "b", (<-hard).Record.Name)
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe(1)
	for i := 0; i < 3; i++ {
		h.Broadcast(context.Background(), core.NewScoreSubmitted(record("x", core.DifficultyEasy)))
	}
	assert.Len(t, ch, 1)
	assert.Equal(t, int64(2), h.Dropped())
}

func TestMarshalJSON(t *testing.T) {
	b := MarshalJSON(core.NewScoreSubmitted(record("alice", core.DifficultyMedium)))
	var out core.Event
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "alice-id", out.Record.ID)
	assert.Equal(t, core.DifficultyMedium, out.Record.Difficulty)
}
