package main

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
	"memorymatch/engine"
	"memorymatch/matchkit"
)

func TestVirtualClockOrder(t *testing.T) {
	c := &virtualClock{}
	var got []string
	c.AfterFunc(2*time.Second, func() { got = append(got, "after") })
	cancel := c.AfterFunc(time.Second, func() { got = append(got, "cancelled") })
	stop := c.Every(time.Second, func() { got = append(got, "tick") })
	cancel()

	c.Advance(2500 * time.Millisecond)
	stop()
	c.Advance(5 * time.Second)

	assert.Equal(t, []string{"tick", "after", "tick"}, got)
}

func TestPerfectBotFinishesEfficiently(t *testing.T) {
	b := bot{name: "p", recall: 1, think: time.Second, rng: rand.New(rand.NewPCG(1, 2))}
	res, err := b.play(core.DifficultyEasy)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Pairs)
	assert.GreaterOrEqual(t, res.Moves, 6)
	assert.LessOrEqual(t, res.Moves, 12)
	assert.Positive(t, res.Seconds)
}

func TestForgetfulBotStillFinishes(t *testing.T) {
	b := bot{name: "f", recall: 0.3, think: 2 * time.Second, rng: rand.New(rand.NewPCG(3, 4))}
	res, err := b.play(core.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Pairs)
	assert.GreaterOrEqual(t, res.Moves, 12)
}

func TestSeedFillsLeaderboard(t *testing.T) {
	svc := matchkit.New(matchkit.WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	require.NoError(t, seed(context.Background(), svc, rand.New(rand.NewPCG(5, 6)), 1))

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(players)*len(core.Difficulties)), n)

	rows, err := svc.Leaderboard(context.Background(), core.DifficultyMedium, 0)
	require.NoError(t, err)
	require.Len(t, rows, len(players))
	for i := 1; i < len(rows); i++ {
		assert.False(t, core.RecordLess(rows[i], rows[i-1]))
	}
}
