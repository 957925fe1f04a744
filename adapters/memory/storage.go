package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"memorymatch/core"
	"memorymatch/leaderboard"
)

// Store is a concurrent in-memory score table indexed by a skip list.
type Store struct {
	board leaderboard.Board
}

func New() *Store { return &Store{board: leaderboard.NewSkipList()} }

func (s *Store) Insert(_ context.Context, score core.Score) (core.Record, error) {
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	rec := core.Record{ID: uuid.NewString(), Score: score}
	s.board.Insert(rec)
	return rec, nil
}

func (s *Store) Query(_ context.Context, q core.Query) ([]core.Record, error) {
	return s.board.Top(q), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	return int64(s.board.Len()), nil
}

var _ interface {
	Insert(context.Context, core.Score) (core.Record, error)
	Query(context.Context, core.Query) ([]core.Record, error)
	Count(context.Context) (int64, error)
} = (*Store)(nil)
