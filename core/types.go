package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Difficulty is an enumerated game size preset.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the presets in ascending size.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Pairs returns the pair count for the preset, or 0 for an unknown label.
func (d Difficulty) Pairs() int {
	switch d {
	case DifficultyEasy:
		return 6
	case DifficultyMedium:
		return 8
	case DifficultyHard:
		return 12
	default:
		return 0
	}
}

// Valid reports whether d is one of the known presets.
func (d Difficulty) Valid() bool { return d.Pairs() > 0 }

// ParseDifficulty trims and lowercases s and checks it against the presets.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// ContentKind tags the variant held by CardContent.
type ContentKind string

const (
	ContentGlyph ContentKind = "glyph"
	ContentImage ContentKind = "image"
)

// CardContent is what a card shows when face up: an emoji glyph or an image reference.
type CardContent struct {
	Kind  ContentKind `json:"kind"`
	Value string      `json:"value"`
}

// Glyph builds emoji content.
func Glyph(g string) CardContent { return CardContent{Kind: ContentGlyph, Value: g} }

// ImageRef builds image reference content.
func ImageRef(ref string) CardContent { return CardContent{Kind: ContentImage, Value: ref} }

func (c CardContent) String() string { return c.Value }

func (c CardContent) IsImage() bool { return c.Kind == ContentImage }

// Card is one tile of the deck. Exactly two cards share a PairID.
type Card struct {
	ID      int         `json:"id"`
	PairID  int         `json:"pair_id"`
	Content CardContent `json:"content"`
	Matched bool        `json:"matched"`
}

const (
	MaxSeconds    = 86400
	MaxMoves      = 10000
	MaxNameLength = 32
	DefaultName   = "Anonymous"

	// MaxDifficultyLength matches the widest stored difficulty column.
	MaxDifficultyLength = 16
)

// ErrInvalidScore marks a score rejected by validation.
var ErrInvalidScore = errors.New("invalid score")

// Score is a finished game result. It is never mutated after creation.
type Score struct {
	Name       string     `json:"name"`
	Seconds    int        `json:"seconds"`
	Moves      int        `json:"moves"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Record is a stored score with its generated id.
type Record struct {
	ID string `json:"id"`
	Score
}

// Validate checks the ranges accepted by the leaderboard service.
func (s Score) Validate() error {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	} else if utf8.RuneCountInString(s.Name) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if s.Seconds < 0 || s.Seconds > MaxSeconds {
		errs = append(errs, fmt.Sprintf("seconds must be between 0 and %d", MaxSeconds))
	}
	if s.Moves < 0 || s.Moves > MaxMoves {
		errs = append(errs, fmt.Sprintf("moves must be between 0 and %d", MaxMoves))
	}
	if strings.TrimSpace(string(s.Difficulty)) == "" {
		errs = append(errs, "difficulty is required")
	} else if utf8.RuneCountInString(string(s.Difficulty)) > MaxDifficultyLength {
		errs = append(errs, fmt.Sprintf("difficulty must be at most %d characters", MaxDifficultyLength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScore, strings.Join(errs, "; "))
	}
	return nil
}

// NormalizeName trims the player name, falls back to DefaultName and caps its length.
func NormalizeName(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return DefaultName
	}
	r := []rune(s)
	if len(r) > MaxNameLength {
		s = strings.TrimSpace(string(r[:MaxNameLength]))
	}
	return s
}

// Less orders scores by seconds, then moves, both ascending.
func Less(a, b Score) bool {
	if a.Seconds != b.Seconds {
		return a.Seconds < b.Seconds
	}
	return a.Moves < b.Moves
}

// RecordLess extends Less with creation time and id so the order is total.
func RecordLess(a, b Record) bool {
	if a.Seconds != b.Seconds || a.Moves != b.Moves {
		return Less(a.Score, b.Score)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortScores sorts in place by (seconds, moves), keeping insertion order on ties.
func SortScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool { return Less(scores[i], scores[j]) })
}

// SortRecords sorts in place using RecordLess.
func SortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool { return RecordLess(records[i], records[j]) })
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
	Window       = 24 * time.Hour
)

// Query selects leaderboard rows.
type Query struct {
	Difficulty Difficulty
	Since      time.Time
	Limit      int
}

// Match reports whether r passes the difficulty and time filters of q.
func (q Query) Match(r Record) bool {
	if q.Difficulty != "" && r.Difficulty != q.Difficulty {
		return false
	}
	if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}

// NormalizeLimit applies the default and upper bound to a requested limit.
func NormalizeLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
