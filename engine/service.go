package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"memorymatch/core"
)

// LeaderboardService validates submissions, stores them and announces them on the bus.
type LeaderboardService struct {
	storage Storage
	bus     *EventBus
	log     *slog.Logger
	now     func() time.Time
}

// ServiceOption tweaks a LeaderboardService.
type ServiceOption func(*LeaderboardService)

// WithClock overrides the time source used for the 24 hour window.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *LeaderboardService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *LeaderboardService) { s.log = l }
}

func NewLeaderboardService(storage Storage, bus *EventBus, opts ...ServiceOption) *LeaderboardService {
	if storage == nil || bus == nil {
		panic("NewLeaderboardService requires non-nil storage and bus")
	}
	s := &LeaderboardService{storage: storage, bus: bus, log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe convenience method.
func (s *LeaderboardService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *LeaderboardService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Submit validates and stores a score. Invalid input is rejected with an error
// wrapping core.ErrInvalidScore and nothing is written.
func (s *LeaderboardService) Submit(ctx context.Context, score core.Score) (core.Record, error) {
	if err := score.Validate(); err != nil {
		return core.Record{}, err
	}
	score.CreatedAt = s.now().UTC()
	rec, err := s.storage.Insert(ctx, score)
	if err != nil {
		return core.Record{}, fmt.Errorf("store score: %w", err)
	}
	s.log.Info("score submitted",
		"id", rec.ID,
		"difficulty", rec.Difficulty,
		"seconds", rec.Seconds,
		"moves", rec.Moves)
	s.bus.Publish(ctx, core.NewScoreSubmitted(rec))
	return rec, nil
}

// Leaderboard returns the best scores of the last 24 hours. An empty difficulty
// ranks all presets together.
func (s *LeaderboardService) Leaderboard(ctx context.Context, difficulty core.Difficulty, limit int) ([]core.Record, error) {
	q := core.Query{
		Difficulty: difficulty,
		Since:      s.now().UTC().Add(-core.Window),
		Limit:      core.NormalizeLimit(limit),
	}
	rows, err := s.storage.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored rows.
func (s *LeaderboardService) Count(ctx context.Context) (int64, error) {
	return s.storage.Count(ctx)
}

func (s *LeaderboardService) Close() { s.bus.Close() }
