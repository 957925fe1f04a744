package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "memorymatch/adapters/memory"
	"memorymatch/core"
)

func TestSubmitAndPublish(t *testing.T) {
	store := mem.New()
	bus := NewEventBus(DispatchSync)
	svc := NewLeaderboardService(store, bus)

	var got []core.Event
	svc.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { got = append(got, e) })

	rec, err := svc.Submit(context.Background(), core.Score{Name: "ann", Seconds: 40, Moves: 9, Difficulty: core.DifficultyEasy})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].Record.ID)
}

func TestSubmitRejectsInvalidWithoutWriting(t *testing.T) {
	store := mem.New()
	svc := NewLeaderboardService(store, NewEventBus(DispatchSync))

	_, err := svc.Submit(context.Background(), core.Score{Name: "ann", Seconds: -1, Moves: 9, Difficulty: core.DifficultyEasy})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidScore))

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLeaderboardWindowAndOrder(t *testing.T) {
	store := mem.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewLeaderboardService(store, NewEventBus(DispatchSync), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := store.Insert(ctx, core.Score{Name: "stale", Seconds: 1, Moves: 1, Difficulty: core.DifficultyEasy, CreatedAt: now.Add(-25 * time.Hour)})
	require.NoError(t, err)
	for _, s := range []core.Score{
		{Name: "a", Seconds: 30, Moves: 10, Difficulty: core.DifficultyEasy},
		{Name: "b", Seconds: 20, Moves: 15, Difficulty: core.DifficultyEasy},
		{Name: "c", Seconds: 20, Moves: 5, Difficulty: core.DifficultyEasy},
		{Name: "h", Seconds: 1, Moves: 1, Difficulty: core.DifficultyHard},
	} {
		_, err := svc.Submit(ctx, s)
		require.NoError(t, err)
	}

	rows, err := svc.Leaderboard(ctx, core.DifficultyEasy, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})

	all, err := svc.Leaderboard(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "h", all[0].Name)
}
