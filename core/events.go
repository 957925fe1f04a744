package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	EventScoreSubmitted EventType = "score_submitted"
	EventGameCompleted  EventType = "game_completed"
)

// Event represents an immutable domain event.
type Event struct {
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	Record   Record         `json:"record"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func NewScoreSubmitted(rec Record) Event {
	return Event{Type: EventScoreSubmitted, Time: time.Now().UTC(), Record: rec}
}

func NewGameCompleted(score Score, stars int) Event {
	return Event{
		Type:     EventGameCompleted,
		Time:     time.Now().UTC(),
		Record:   Record{Score: score},
		Metadata: map[string]any{"stars": stars},
	}
}
