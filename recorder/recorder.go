// Package recorder turns a finished game into a leaderboard entry.
//
// The remote service is preferred for both submission and ranking; the local
// cache is written on every completion and serves the ranking whenever the
// remote cannot.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"memorymatch/core"
	"memorymatch/game"
)

// Remote is the leaderboard service as seen by the client.
type Remote interface {
	SubmitScore(ctx context.Context, s core.Score) (core.Record, error)
	Leaderboard(ctx context.Context, d core.Difficulty, limit int) ([]core.Record, error)
}

// Local is the on-device leaderboard cache.
type Local interface {
	Add(s core.Score) error
	Top(d core.Difficulty, limit int) []core.Score
}

// Source tells where a displayed leaderboard came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Outcome is the result of recording one game.
type Outcome struct {
	Score     core.Score
	Stars     int
	Submitted bool
	RecordID  string
	Source    Source
	Entries   []core.Score
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) Option { return func(r *Recorder) { r.now = now } }

// WithLimit sets how many entries are fetched for display.
func WithLimit(n int) Option { return func(r *Recorder) { r.limit = n } }

// Recorder submits scores and fetches rankings. remote may be nil for offline play.
type Recorder struct {
	remote Remote
	local  Local
	log    *slog.Logger
	now    func() time.Time
	limit  int
}

func New(remote Remote, local Local, opts ...Option) *Recorder {
	if local == nil {
		panic("recorder.New requires a local cache")
	}
	r := &Recorder{remote: remote, local: local, log: slog.Default(), now: time.Now, limit: core.DefaultLimit}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record builds the score for res, submits it, stores it locally and returns the
// leaderboard to show. Failures degrade to local data and are only logged.
func (r *Recorder) Record(ctx context.Context, name string, res game.Result) Outcome {
	score := core.Score{
		Name:       core.NormalizeName(name),
		Seconds:    res.Seconds,
		Moves:      res.Moves,
		Difficulty: res.Difficulty,
		CreatedAt:  r.now().UTC(),
	}
	out := Outcome{Score: score, Stars: core.StarRating(res.Moves, res.Pairs)}

	if r.remote != nil {
		rec, err := r.remote.SubmitScore(ctx, score)
		if err != nil {
			r.log.Warn("score submission failed, keeping local copy", "error", err)
		} else {
			out.Submitted = true
			out.RecordID = rec.ID
		}
	}
	// the local copy is kept even when the remote accepted the score
	if err := r.local.Add(score); err != nil {
		r.log.Warn("local cache write failed", "error", err)
	}

	out.Entries, out.Source = r.Leaderboard(ctx, score.Difficulty)
	return out
}

// RecordAsync runs Record on its own goroutine and delivers the outcome on the
// returned channel.
func (r *Recorder) RecordAsync(ctx context.Context, name string, res game.Result) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		ch <- r.Record(ctx, name, res)
		close(ch)
	}()
	return ch
}

// Leaderboard returns the remote ranking for d, or the local one if the remote fails.
func (r *Recorder) Leaderboard(ctx context.Context, d core.Difficulty) ([]core.Score, Source) {
	if r.remote != nil {
		rows, err := r.remote.Leaderboard(ctx, d, r.limit)
		if err == nil {
			out := make([]core.Score, len(rows))
			for i, row := range rows {
				out[i] = row.Score
			}
			return out, SourceRemote
		}
		r.log.Warn("leaderboard fetch failed, showing local cache", "error", err)
	}
	return r.local.Top(d, r.limit), SourceLocal
}
