package engine

import (
	"context"

	"memorymatch/core"
)

// Storage abstracts the append-only score table.
type Storage interface {
	// Insert stores s and returns it with its generated id. A zero CreatedAt is set to now.
	Insert(ctx context.Context, s core.Score) (core.Record, error)
	// Query returns matching rows ordered by seconds then moves.
	Query(ctx context.Context, q core.Query) ([]core.Record, error)
	Count(ctx context.Context) (int64, error)
}
