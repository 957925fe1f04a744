package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_InsertAndQuery(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client, "test")
	ctx := context.Background()
	now := time.Now().UTC()

	for _, sc := range []core.Score{
		{Name: "a", Seconds: 30, Moves: 10, Difficulty: core.DifficultyEasy},
		{Name: "b", Seconds: 20, Moves: 15, Difficulty: core.DifficultyEasy},
		{Name: "c", Seconds: 20, Moves: 5, Difficulty: core.DifficultyEasy},
		{Name: "h", Seconds: 5, Moves: 5, Difficulty: core.DifficultyHard},
	} {
		rec, err := store.Insert(ctx, sc)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
	}

	rows, err := store.Query(ctx, core.Query{Difficulty: core.DifficultyEasy, Since: now.Add(-core.Window)})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[0].Name)
	assert.Equal(t, "b", rows[1].Name)
	assert.Equal(t, "a", rows[2].Name)

	all, err := store.Query(ctx, core.Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "h", all[0].Name)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestStore_QueryExcludesOldRows(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client, "test")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := store.Insert(ctx, core.Score{Name: "old", Seconds: 1, Moves: 1, Difficulty: core.DifficultyEasy, CreatedAt: now.Add(-25 * time.Hour)})
	require.NoError(t, err)
	_, err = store.Insert(ctx, core.Score{Name: "new", Seconds: 50, Moves: 30, Difficulty: core.DifficultyEasy})
	require.NoError(t, err)

	rows, err := store.Query(ctx, core.Query{Since: now.Add(-core.Window)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new", rows[0].Name)
}

func TestStore_EmptyQuery(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	rows, err := NewWithClient(client, "test").Query(context.Background(), core.Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_KeyLayout(t *testing.T) {
	s := &Store{prefix: "mm"}
	assert.Equal(t, "mm:score:abc", s.recordKey("abc"))
	assert.Equal(t, "mm:scores", s.timeIndexKey(""))
	assert.Equal(t, "mm:scores:hard", s.timeIndexKey(core.DifficultyHard))
	assert.Equal(t, "scores", (&Store{}).timeIndexKey(""))
}

func TestConfig_DefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "localhost:6379", config.Addr)
	assert.Equal(t, "", config.Password)
	assert.Equal(t, 0, config.DB)
	assert.Equal(t, "memorymatch", config.KeyPrefix)
	assert.Equal(t, 10, config.PoolSize)
	assert.Equal(t, 5*time.Second, config.DialTimeout)
}
