package localcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "cache", "leaderboard.json"), nil)
}

func TestLoadMissingIsEmpty(t *testing.T) {
	c := newCache(t)
	assert.Empty(t, c.Load())
}

func TestAddSortsAndCaps(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Add(core.Score{Name: "a", Seconds: 30, Moves: 10, Difficulty: core.DifficultyEasy}))
	require.NoError(t, c.Add(core.Score{Name: "b", Seconds: 20, Moves: 15, Difficulty: core.DifficultyEasy}))
	require.NoError(t, c.Add(core.Score{Name: "c", Seconds: 20, Moves: 5, Difficulty: core.DifficultyEasy}))

	got := c.Load()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].Name, got[1].Name, got[2].Name})

	for i := 0; i < 30; i++ {
		require.NoError(t, c.Add(core.Score{Name: fmt.Sprint(i), Seconds: 100 + i, Moves: 1, Difficulty: core.DifficultyHard}))
	}
	got = c.Load()
	require.Len(t, got, Capacity)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, 116, got[Capacity-1].Seconds)
}

func TestTopFiltersByDifficulty(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Add(core.Score{Name: "e", Seconds: 10, Difficulty: core.DifficultyEasy}))
	require.NoError(t, c.Add(core.Score{Name: "h", Seconds: 5, Difficulty: core.DifficultyHard}))

	top := c.Top(core.DifficultyEasy, 0)
	require.Len(t, top, 1)
	assert.Equal(t, "e", top[0].Name)
	assert.Len(t, c.Top("", 1), 1)
}

func TestCorruptedCacheIsEmpty(t *testing.T) {
	c := newCache(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.Path()), 0o755))
	require.NoError(t, os.WriteFile(c.Path(), []byte("not json at all"), 0o644))
	assert.Empty(t, c.Load())

	// a valid document with a malformed entry is also treated as empty
	require.NoError(t, os.WriteFile(c.Path(), []byte(`{"`+Key+`": {"oops": true}}`), 0o644))
	assert.Empty(t, c.Load())

	// and writing recovers the file
	require.NoError(t, c.Add(core.Score{Name: "z", Seconds: 1, Difficulty: core.DifficultyEasy}))
	assert.Len(t, c.Load(), 1)
}

func TestNonObjectCacheIsEmpty(t *testing.T) {
	for _, body := range []string{"null", "5", `"x"`, "[]", `{"` + Key + `": null}`} {
		t.Run(body, func(t *testing.T) {
			c := newCache(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(c.Path()), 0o755))
			require.NoError(t, os.WriteFile(c.Path(), []byte(body), 0o644))

			assert.NotNil(t, c.Load())
			assert.Empty(t, c.Load())
			require.NoError(t, c.Add(core.Score{Name: "z", Seconds: 1, Difficulty: core.DifficultyEasy}))
			assert.Len(t, c.Load(), 1)

			require.NoError(t, os.WriteFile(c.Path(), []byte(body), 0o644))
			require.NoError(t, c.Clear())
			assert.Empty(t, c.Load())
		})
	}
}

func TestClearKeepsOtherKeys(t *testing.T) {
	c := newCache(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.Path()), 0o755))
	require.NoError(t, os.WriteFile(c.Path(), []byte(`{"player-name": "\"ann\""}`), 0o644))
	require.NoError(t, c.Add(core.Score{Name: "z", Seconds: 1, Difficulty: core.DifficultyEasy}))
	require.NoError(t, c.Clear())
	assert.Empty(t, c.Load())

	b, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Contains(t, doc, "player-name")
	assert.NotContains(t, doc, Key)
}

func TestSaveReplaces(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Add(core.Score{Name: "old", Seconds: 1}))
	require.NoError(t, c.Save([]core.Score{{Name: "b", Seconds: 9}, {Name: "a", Seconds: 3}}))
	got := c.Load()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
}
