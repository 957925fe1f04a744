package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
	"memorymatch/game"
	"memorymatch/localcache"
)

type fakeRemote struct {
	submitErr error
	fetchErr  error
	submitted []core.Score
	rows      []core.Record
}

func (f *fakeRemote) SubmitScore(_ context.Context, s core.Score) (core.Record, error) {
	if f.submitErr != nil {
		return core.Record{}, f.submitErr
	}
	f.submitted = append(f.submitted, s)
	rec := core.Record{ID: "id-1", Score: s}
	f.rows = append(f.rows, rec)
	return rec, nil
}

func (f *fakeRemote) Leaderboard(_ context.Context, d core.Difficulty, _ int) ([]core.Record, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []core.Record
	for _, r := range f.rows {
		if r.Difficulty == d {
			out = append(out, r)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newRecorder(t *testing.T, remote Remote) (*Recorder, *localcache.Cache) {
	t.Helper()
	cache := localcache.New(filepath.Join(t.TempDir(), "lb.json"), nil)
	return New(remote, cache, WithClock(func() time.Time { return fixedNow })), cache
}

var result = game.Result{Difficulty: core.DifficultyEasy, Pairs: 6, Moves: 9, Seconds: 41}

func TestRecordRemoteSuccessAlsoWritesLocal(t *testing.T) {
	remote := &fakeRemote{}
	r, cache := newRecorder(t, remote)

	out := r.Record(context.Background(), "  Ann ", result)
	assert.True(t, out.Submitted)
	assert.Equal(t, "id-1", out.RecordID)
	assert.Equal(t, SourceRemote, out.Source)
	assert.Equal(t, 2, out.Stars)
	require.Len(t, remote.submitted, 1)
	assert.Equal(t, core.Score{Name: "Ann", Seconds: 41, Moves: 9, Difficulty: core.DifficultyEasy, CreatedAt: fixedNow}, remote.submitted[0])
	require.Len(t, out.Entries, 1)

	local := cache.Load()
	require.Len(t, local, 1)
	assert.Equal(t, "Ann", local[0].Name)
}

func TestRecordFallsBackToLocal(t *testing.T) {
	remote := &fakeRemote{submitErr: errors.New("connection refused"), fetchErr: errors.New("connection refused")}
	r, cache := newRecorder(t, remote)
	require.NoError(t, cache.Add(core.Score{Name: "prev", Seconds: 10, Moves: 6, Difficulty: core.DifficultyEasy}))
	require.NoError(t, cache.Add(core.Score{Name: "hard", Seconds: 5, Moves: 6, Difficulty: core.DifficultyHard}))

	out := r.Record(context.Background(), "", result)
	assert.False(t, out.Submitted)
	assert.Equal(t, SourceLocal, out.Source)
	assert.Equal(t, core.DefaultName, out.Score.Name)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "prev", out.Entries[0].Name)
	assert.Equal(t, core.DefaultName, out.Entries[1].Name)
}

func TestRecordSubmitOkFetchFails(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("timeout")}
	r, _ := newRecorder(t, remote)

	out := r.Record(context.Background(), "bo", result)
	assert.True(t, out.Submitted)
	assert.Equal(t, SourceLocal, out.Source)
	require.Len(t, out.Entries, 1)
}

func TestRecordOffline(t *testing.T) {
	r, _ := newRecorder(t, nil)
	out := <-r.RecordAsync(context.Background(), "solo", result)
	assert.False(t, out.Submitted)
	assert.Equal(t, SourceLocal, out.Source)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "solo", out.Entries[0].Name)
}
