// Package deck builds shuffled decks of paired cards.
package deck

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"

	"memorymatch/core"
)

var (
	ErrInvalidPairs  = errors.New("pair count must be positive")
	ErrTooManyPairs  = errors.New("pair count exceeds symbol pool")
	ErrDuplicateItem = errors.New("symbol pool contains duplicates")
)

// Glyphs is the default emoji pool.
var Glyphs = []string{
	"🐶", "🐱", "🦊", "🐼", "🐸", "🐵", "🦁", "🐯",
	"🐨", "🐷", "🐙", "🦄", "🐝", "🐢", "🦋", "🐳",
}

// Option configures Generate.
type Option func(*generator)

type generator struct {
	pool []core.CardContent
	rng  *rand.Rand
}

// WithRand sets the random source used for symbol selection and shuffling.
func WithRand(r *rand.Rand) Option {
	return func(g *generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithGlyphs replaces the emoji pool.
func WithGlyphs(glyphs []string) Option {
	return func(g *generator) {
		g.pool = make([]core.CardContent, 0, len(glyphs))
		for _, s := range glyphs {
			g.pool = append(g.pool, core.Glyph(s))
		}
	}
}

// WithImagePool uses image references instead of glyphs.
func WithImagePool(refs []string) Option {
	return func(g *generator) {
		g.pool = make([]core.CardContent, 0, len(refs))
		for _, s := range refs {
			g.pool = append(g.pool, core.ImageRef(s))
		}
	}
}

// NewRand returns a PCG source seeded from crypto/rand.
func NewRand() *rand.Rand {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		seed = [16]byte{}
	}
	return rand.New(rand.NewPCG(binary.BigEndian.Uint64(seed[:8]), binary.BigEndian.Uint64(seed[8:])))
}

// PoolSize returns the number of distinct symbols available with the given options.
func PoolSize(opts ...Option) int {
	return len(newGenerator(opts).pool)
}

// Clamp limits pairs to [1, pool size].
func Clamp(pairs int, opts ...Option) int {
	n := PoolSize(opts...)
	if pairs > n {
		return n
	}
	if pairs < 1 {
		return 1
	}
	return pairs
}

func newGenerator(opts []Option) *generator {
	g := &generator{}
	WithGlyphs(Glyphs)(g)
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns 2*pairs cards: each of pairs distinct symbols drawn without
// replacement appears on exactly two cards sharing a PairID. Card ids run 0..2*pairs-1
// before shuffling.
func Generate(pairs int, opts ...Option) ([]core.Card, error) {
	g := newGenerator(opts)
	if pairs <= 0 {
		return nil, ErrInvalidPairs
	}
	if pairs > len(g.pool) {
		return nil, fmt.Errorf("%w: requested %d, pool has %d", ErrTooManyPairs, pairs, len(g.pool))
	}
	seen := make(map[core.CardContent]struct{}, len(g.pool))
	for _, c := range g.pool {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, c.Value)
		}
		seen[c] = struct{}{}
	}
	if g.rng == nil {
		g.rng = NewRand()
	}

	symbols := make([]core.CardContent, len(g.pool))
	copy(symbols, g.pool)
	shuffle(g.rng, len(symbols), func(i, j int) { symbols[i], symbols[j] = symbols[j], symbols[i] })
	symbols = symbols[:pairs]

	cards := make([]core.Card, 0, 2*pairs)
	for pair, sym := range symbols {
		cards = append(cards,
			core.Card{ID: 2 * pair, PairID: pair, Content: sym},
			core.Card{ID: 2*pair + 1, PairID: pair, Content: sym},
		)
	}
	shuffle(g.rng, len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards, nil
}

// shuffle is a Fisher-Yates shuffle; every permutation is equally likely.
func shuffle(r *rand.Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		swap(i, j)
	}
}

// ForDifficulty generates the deck for a preset.
func ForDifficulty(d core.Difficulty, opts ...Option) ([]core.Card, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", d)
	}
	return Generate(d.Pairs(), opts...)
}
