// Package game implements the turn-resolution state machine of a memory match game.
package game

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"memorymatch/core"
	"memorymatch/deck"
)

// State is the lifecycle phase of a Session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateResolving
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateResolving:
		return "resolving"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	MatchDelay    = 600 * time.Millisecond
	MismatchDelay = 800 * time.Millisecond
	TickInterval  = time.Second
)

// Result describes a completed game.
type Result struct {
	Difficulty core.Difficulty
	Pairs      int
	Moves      int
	Seconds    int
	Stars      int
}

// CardView is a card as the player currently sees it.
type CardView struct {
	ID      int              `json:"id"`
	PairID  int              `json:"pair_id"`
	Content core.CardContent `json:"content"`
	Matched bool             `json:"matched"`
	FaceUp  bool             `json:"face_up"`
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	Difficulty core.Difficulty `json:"difficulty"`
	State      State           `json:"state"`
	Pairs      int             `json:"pairs"`
	Matches    int             `json:"matches"`
	Moves      int             `json:"moves"`
	Seconds    int             `json:"seconds"`
	Stars      int             `json:"stars"`
	Focus      int             `json:"focus"`
	Flipped    []int           `json:"flipped"`
	Cards      []CardView      `json:"cards"`
}

// Option configures a Session.
type Option func(*Session)

// WithScheduler overrides the timer source.
func WithScheduler(s Scheduler) Option {
	return func(g *Session) {
		if s != nil {
			g.sched = s
		}
	}
}

// WithDeckOptions passes options to deck generation on start and restart.
func WithDeckOptions(opts ...deck.Option) Option {
	return func(g *Session) { g.deckOpts = append(g.deckOpts, opts...) }
}

// WithOnComplete registers the hook fired once when the last pair is matched.
func WithOnComplete(fn func(Result)) Option { return func(g *Session) { g.onComplete = fn } }

// WithOnChange registers a hook fired after every visible state change.
func WithOnChange(fn func(Snapshot)) Option { return func(g *Session) { g.onChange = fn } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Session) {
		if l != nil {
			g.log = l
		}
	}
}

// Session is a single-player game. All transitions are serialized by an internal
// mutex; hooks run after the lock is released.
type Session struct {
	mu         sync.Mutex
	sched      Scheduler
	deckOpts   []deck.Option
	onComplete func(Result)
	onChange   func(Snapshot)
	log        *slog.Logger

	difficulty core.Difficulty
	pairs      int
	cards      []core.Card
	index      map[int]int
	flipped    []int
	matches    int
	moves      int
	seconds    int
	state      State
	focus      int
	closed     bool

	// epoch invalidates callbacks scheduled before a restart or close.
	epoch uint64
	// tickGen invalidates ticks of a stopped clock that were already in flight.
	tickGen uint64
	ticker  Cancel
	pending Cancel
}

// New starts an idle session with the deck for difficulty d.
func New(d core.Difficulty, opts ...Option) (*Session, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", d)
	}
	s := &Session{sched: RealScheduler{}, log: slog.Default(), difficulty: d}
	for _, o := range opts {
		o(s)
	}
	if err := s.reset(d.Pairs()); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart deals a fresh deck of the given pair count and returns to Idle.
// Pending resolutions and the running timer are cancelled.
func (s *Session) Restart(pairs int) error {
	s.mu.Lock()
	err := s.resetLocked(pairs)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(snap)
	return nil
}

// RestartDifficulty switches to preset d and restarts.
func (s *Session) RestartDifficulty(d core.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("unknown difficulty %q", d)
	}
	s.mu.Lock()
	s.difficulty = d
	s.mu.Unlock()
	return s.Restart(d.Pairs())
}

func (s *Session) reset(pairs int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked(pairs)
}

func (s *Session) resetLocked(pairs int) error {
	cards, err := deck.Generate(pairs, s.deckOpts...)
	if err != nil {
		return fmt.Errorf("deal deck: %w", err)
	}
	s.cancelTimersLocked()
	s.epoch++
	s.pairs = pairs
	s.cards = cards
	s.index = make(map[int]int, len(cards))
	for i, c := range cards {
		s.index[c.ID] = i
	}
	s.flipped = nil
	s.matches = 0
	s.moves = 0
	s.seconds = 0
	s.focus = 0
	s.state = StateIdle
	s.closed = false
	return nil
}

// Flip reveals the card with the given id. It reports whether the request changed
// anything; flips of matched cards, of the single face-up card, and flips issued
// while a pair is resolving are ignored.
func (s *Session) Flip(cardID int) bool {
	s.mu.Lock()
	pos, ok := s.index[cardID]
	if !ok || s.closed || s.state == StateResolving || s.state == StateCompleted {
		s.mu.Unlock()
		return false
	}
	card := s.cards[pos]
	if card.Matched || (len(s.flipped) == 1 && s.flipped[0] == cardID) {
		s.mu.Unlock()
		return false
	}

	if s.state == StateIdle {
		s.state = StateRunning
		s.startTimerLocked()
	}
	s.focus = pos
	s.flipped = append(s.flipped, cardID)

	if len(s.flipped) == 2 {
		s.moves++
		s.state = StateResolving
		first := s.cards[s.index[s.flipped[0]]]
		match := first.PairID == card.PairID
		delay := MismatchDelay
		if match {
			delay = MatchDelay
		}
		epoch := s.epoch
		s.pending = s.sched.AfterFunc(delay, func() { s.resolve(epoch, match) })
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// FlipAt flips the card at position pos of the dealt layout.
func (s *Session) FlipAt(pos int) bool {
	s.mu.Lock()
	if pos < 0 || pos >= len(s.cards) {
		s.mu.Unlock()
		return false
	}
	id := s.cards[pos].ID
	s.mu.Unlock()
	return s.Flip(id)
}

func (s *Session) resolve(epoch uint64, match bool) {
	s.mu.Lock()
	if epoch != s.epoch || s.state != StateResolving {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	if match {
		for _, id := range s.flipped {
			s.cards[s.index[id]].Matched = true
		}
		s.matches++
	}
	s.flipped = nil
	s.state = StateRunning

	var result *Result
	if match && s.matches == s.pairs {
		s.stopTimerLocked()
		s.state = StateCompleted
		result = &Result{
			Difficulty: s.difficulty,
			Pairs:      s.pairs,
			Moves:      s.moves,
			Seconds:    s.seconds,
			Stars:      core.StarRating(s.moves, s.pairs),
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	if result != nil {
		s.log.Debug("game completed",
			"difficulty", result.Difficulty,
			"moves", result.Moves,
			"seconds", result.Seconds,
			"stars", result.Stars)
		if s.onComplete != nil {
			s.onComplete(*result)
		}
	}
}

func (s *Session) tick(epoch, gen uint64) {
	s.mu.Lock()
	if epoch != s.epoch || gen != s.tickGen || (s.state != StateRunning && s.state != StateResolving) {
		s.mu.Unlock()
		return
	}
	s.seconds++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Pause stops the clock of a running game. A later flip resumes it.
func (s *Session) Pause() bool {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	s.stopTimerLocked()
	s.state = StateIdle
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Close cancels the timer and any pending resolution. Further flips are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimersLocked()
	s.epoch++
	s.closed = true
}

func (s *Session) startTimerLocked() {
	if s.ticker != nil {
		return
	}
	epoch, gen := s.epoch, s.tickGen
	s.ticker = s.sched.Every(TickInterval, func() { s.tick(epoch, gen) })
}

func (s *Session) stopTimerLocked() {
	s.tickGen++
	if s.ticker != nil {
		s.ticker()
		s.ticker = nil
	}
}

func (s *Session) cancelTimersLocked() {
	s.stopTimerLocked()
	if s.pending != nil {
		s.pending()
		s.pending = nil
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	up := make(map[int]bool, len(s.flipped))
	for _, id := range s.flipped {
		up[id] = true
	}
	views := make([]CardView, len(s.cards))
	for i, c := range s.cards {
		views[i] = CardView{
			ID:      c.ID,
			PairID:  c.PairID,
			Content: c.Content,
			Matched: c.Matched,
			FaceUp:  c.Matched || up[c.ID],
		}
	}
	return Snapshot{
		Difficulty: s.difficulty,
		State:      s.state,
		Pairs:      s.pairs,
		Matches:    s.matches,
		Moves:      s.moves,
		Seconds:    s.seconds,
		Stars:      core.StarRating(s.moves, s.pairs),
		Focus:      s.focus,
		Flipped:    append([]int(nil), s.flipped...),
		Cards:      views,
	}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Completed reports whether every card is matched.
func (s *Session) Completed() bool { return s.State() == StateCompleted }
