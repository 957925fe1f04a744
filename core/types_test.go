package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStarRating(t *testing.T) {
	cases := []struct {
		moves, pairs, want int
	}{
		{0, 10, 3},
		{0, 0, 3},
		{10, 10, 3},
		{12, 10, 3},
		{15, 10, 2},
		{20, 10, 2},
		{25, 10, 1},
	}
	for _, c := range cases {
		if got := StarRating(c.moves, c.pairs); got != c.want {
			t.Fatalf("StarRating(%d,%d) = %d, want %d", c.moves, c.pairs, got, c.want)
		}
	}
}

func TestSortScores(t *testing.T) {
	scores := []Score{
		{Name: "a", Seconds: 30, Moves: 10},
		{Name: "b", Seconds: 20, Moves: 15},
		{Name: "c", Seconds: 20, Moves: 5},
	}
	SortScores(scores)
	if scores[0].Name != "c" || scores[1].Name != "b" || scores[2].Name != "a" {
		t.Fatalf("unexpected order: %+v", scores)
	}
}

func TestRecordLessTieBreak(t *testing.T) {
	now := time.Now()
	a := Record{ID: "a", Score: Score{Seconds: 5, Moves: 5, CreatedAt: now}}
	b := Record{ID: "b", Score: Score{Seconds: 5, Moves: 5, CreatedAt: now.Add(time.Second)}}
	if !RecordLess(a, b) || RecordLess(b, a) {
		t.Fatal("earlier record should rank first on equal performance")
	}
}

func TestScoreValidate(t *testing.T) {
	ok := Score{Name: "ann", Seconds: 10, Moves: 8, Difficulty: DifficultyEasy}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	widest := Score{Name: strings.Repeat("é", MaxNameLength), Seconds: 1, Moves: 1, Difficulty: Difficulty(strings.Repeat("d", MaxDifficultyLength))}
	if err := widest.Validate(); err != nil {
		t.Fatalf("longest accepted name rejected: %v", err)
	}
	bad := []Score{
		{Name: " ", Seconds: 1, Moves: 1, Difficulty: DifficultyEasy},
		{Name: "x", Seconds: -1, Moves: 1, Difficulty: DifficultyEasy},
		{Name: "x", Seconds: MaxSeconds + 1, Moves: 1, Difficulty: DifficultyEasy},
		{Name: "x", Seconds: 1, Moves: MaxMoves + 1, Difficulty: DifficultyEasy},
		{Name: "x", Seconds: 1, Moves: 1},
		{Name: strings.Repeat("n", MaxNameLength+1), Seconds: 1, Moves: 1, Difficulty: DifficultyEasy},
		{Name: strings.Repeat("n", 100), Seconds: 1, Moves: 1, Difficulty: DifficultyEasy},
		{Name: "x", Seconds: 1, Moves: 1, Difficulty: Difficulty(strings.Repeat("d", MaxDifficultyLength+1))},
	}
	for i, s := range bad {
		err := s.Validate()
		if !errors.Is(err, ErrInvalidScore) {
			t.Fatalf("case %d: expected ErrInvalidScore, got %v", i, err)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  "); got != DefaultName {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeName(" Bob "); got != "Bob" {
		t.Fatalf("got %q", got)
	}
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijkl"
	if got := NormalizeName(long); len([]rune(got)) != MaxNameLength {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	if err != nil || d != DifficultyHard || d.Pairs() != 12 {
		t.Fatalf("got %v %v", d, err)
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Fatal("expected error")
	}
}

func TestQueryMatch(t *testing.T) {
	now := time.Now()
	q := Query{Difficulty: DifficultyEasy, Since: now.Add(-Window)}
	fresh := Record{Score: Score{Difficulty: DifficultyEasy, CreatedAt: now}}
	stale := Record{Score: Score{Difficulty: DifficultyEasy, CreatedAt: now.Add(-25 * time.Hour)}}
	other := Record{Score: Score{Difficulty: DifficultyHard, CreatedAt: now}}
	if !q.Match(fresh) || q.Match(stale) || q.Match(other) {
		t.Fatal("unexpected match result")
	}
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(5) != 5 {
		t.Fatal("unexpected limit normalization")
	}
}
