package analytics

import (
	"sync"
	"time"

	"memorymatch/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// DailyPlayers tracks distinct player names per UTC day.
type DailyPlayers struct {
	mu   sync.Mutex
	days map[string]map[string]struct{}
}

func NewDailyPlayers() *DailyPlayers { return &DailyPlayers{days: map[string]map[string]struct{}{}} }

func (d *DailyPlayers) OnEvent(e core.Event) {
	if e.Type != core.EventScoreSubmitted {
		return
	}
	day := dayKey(e.Time)
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[string]struct{}{}
		d.days[day] = m
	}
	m[e.Record.Name] = struct{}{}
}

func (d *DailyPlayers) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// Snapshot is the JSON body of the stats endpoint.
type Snapshot struct {
	Submissions  map[string]int64 `json:"submissions"`
	BestSeconds  map[string]int   `json:"best_seconds"`
	PlayersToday int              `json:"players_today"`
}

// SubmissionStats counts accepted scores and the best time per difficulty.
// Counters live in process memory and reset on restart.
type SubmissionStats struct {
	mu          sync.RWMutex
	submissions map[core.Difficulty]int64
	best        map[core.Difficulty]int
	players     *DailyPlayers
	now         func() time.Time
}

func NewSubmissionStats() *SubmissionStats {
	return &SubmissionStats{
		submissions: make(map[core.Difficulty]int64),
		best:        make(map[core.Difficulty]int),
		players:     NewDailyPlayers(),
		now:         time.Now,
	}
}

func (s *SubmissionStats) OnEvent(e core.Event) {
	if e.Type != core.EventScoreSubmitted {
		return
	}
	s.players.OnEvent(e)

	d := e.Record.Difficulty
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[d]++
	if best, ok := s.best[d]; !ok || e.Record.Seconds < best {
		s.best[d] = e.Record.Seconds
	}
}

// Submissions returns the accepted score count for d.
func (s *SubmissionStats) Submissions(d core.Difficulty) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submissions[d]
}

// Best returns the fastest accepted time for d.
func (s *SubmissionStats) Best(d core.Difficulty) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.best[d]
	return v, ok
}

func (s *SubmissionStats) Snapshot() Snapshot {
	s.mu.RLock()
	out := Snapshot{
		Submissions: make(map[string]int64, len(s.submissions)),
		BestSeconds: make(map[string]int, len(s.best)),
	}
	for d, n := range s.submissions {
		out.Submissions[string(d)] = n
	}
	for d, v := range s.best {
		out.BestSeconds[string(d)] = v
	}
	s.mu.RUnlock()
	out.PlayersToday = s.players.Count(dayKey(s.now()))
	return out
}
