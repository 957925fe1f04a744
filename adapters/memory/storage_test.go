package memory

import (
	"context"
	"testing"
	"time"

	"memorymatch/core"
)

func TestMemoryStore(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, sc := range []core.Score{
		{Name: "a", Seconds: 30, Moves: 10, Difficulty: core.DifficultyEasy},
		{Name: "b", Seconds: 20, Moves: 15, Difficulty: core.DifficultyEasy},
		{Name: "c", Seconds: 20, Moves: 5, Difficulty: core.DifficultyEasy},
		{Name: "old", Seconds: 1, Moves: 1, Difficulty: core.DifficultyEasy, CreatedAt: now.Add(-30 * time.Hour)},
	} {
		rec, err := s.Insert(ctx, sc)
		if err != nil || rec.ID == "" {
			t.Fatalf("insert: %+v %v", rec, err)
		}
	}
	rows, err := s.Query(ctx, core.Query{Difficulty: core.DifficultyEasy, Since: now.Add(-core.Window)})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0].Name != "c" || rows[1].Name != "b" || rows[2].Name != "a" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	n, _ := s.Count(ctx)
	if n != 4 {
		t.Fatalf("expected 4 rows, got %d", n)
	}
}
