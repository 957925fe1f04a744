package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
	"memorymatch/deck"
	"memorymatch/game"
	"memorymatch/localcache"
	"memorymatch/recorder"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// instantScheduler fires delayed callbacks right away and never ticks.
type instantScheduler struct{}

func (instantScheduler) AfterFunc(_ time.Duration, f func()) game.Cancel {
	go f()
	return func() {}
}

func (instantScheduler) Every(time.Duration, func()) game.Cancel { return func() {} }

func newTestEnv(t *testing.T, in io.Reader) (*env, *syncBuffer) {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := localcache.New(filepath.Join(dir, "leaderboard.json"), logger)
	out := &syncBuffer{}
	return &env{
		prefsPath: filepath.Join(dir, "config.toml"),
		logger:    logger,
		cache:     cache,
		recorder:  recorder.New(nil, cache, recorder.WithLogger(logger)),
		in:        in,
		out:       out,
		width:     80,
	}, out
}

func seeded() deck.Option { return deck.WithRand(rand.New(rand.NewPCG(7, 11))) }

func TestPlayFullGameRecordsLocally(t *testing.T) {
	cards, err := deck.ForDifficulty(core.DifficultyEasy, seeded())
	require.NoError(t, err)
	positions := map[int][]int{}
	for i, c := range cards {
		positions[c.PairID] = append(positions[c.PairID], i+1)
	}

	pr, pw := io.Pipe()
	e, out := newTestEnv(t, pr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- play(context.Background(), e, core.DifficultyEasy, "tester",
			game.WithScheduler(instantScheduler{}), game.WithDeckOptions(seeded()))
	}()

	for pair := 0; pair < len(positions); pair++ {
		pos := positions[pair]
		_, err := fmt.Fprintf(pw, "%d %d\n", pos[0], pos[1])
		require.NoError(t, err)
		want := fmt.Sprintf("Pairs: %d/6", pair+1)
		require.Eventually(t, func() bool { return strings.Contains(out.String(), want) }, 2*time.Second, 5*time.Millisecond)
	}

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("play did not return after the last pair")
	}
	_ = pw.Close()

	text := out.String()
	assert.Contains(t, text, "All 6 pairs found")
	assert.Contains(t, text, "★★★")
	assert.Contains(t, text, "Score saved on this device.")
	assert.Contains(t, text, "tester")

	saved := e.cache.Load()
	require.Len(t, saved, 1)
	assert.Equal(t, 6, saved[0].Moves)
	assert.Equal(t, core.DifficultyEasy, saved[0].Difficulty)

	prefs, err := loadPreferences(e.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "tester", prefs.Name)
}

func TestPlayQuitRecordsNothing(t *testing.T) {
	e, out := newTestEnv(t, strings.NewReader("1\nbogus\nq\n"))
	err := play(context.Background(), e, core.DifficultyMedium, "quitter",
		game.WithScheduler(instantScheduler{}), game.WithDeckOptions(seeded()))
	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown command "bogus"`)
	assert.Empty(t, e.cache.Load())
}

func TestPlayPromptsForName(t *testing.T) {
	e, out := newTestEnv(t, strings.NewReader(""))
	require.NoError(t, play(context.Background(), e, core.DifficultyEasy, ""))
	assert.Contains(t, out.String(), "Your name: ")
}
