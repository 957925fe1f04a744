// Package nats publishes score events to a NATS subject so other services
// (tournament bots, dashboards) can follow the leaderboard.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"memorymatch/core"
)

// DefaultSubject is the subject prefix; the event type is appended.
const DefaultSubject = "memorymatch.events"

// Publisher is the subset of *nats.Conn used by the sink.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Connect dials the broker with reconnect settings suited to a long-lived server.
func Connect(url, name string) (*natsgo.Conn, error) {
	opts := []natsgo.Option{
		natsgo.Name(name),
		natsgo.Timeout(10 * time.Second),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.MaxReconnects(-1),
	}
	nc, err := natsgo.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// Sink publishes events as JSON on "<subject>.<event type>", with the
// difficulty appended for score events so subscribers can filter by preset.
type Sink struct {
	pub     Publisher
	subject string
	log     *slog.Logger
}

func New(pub Publisher, subject string, logger *slog.Logger) *Sink {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{pub: pub, subject: subject, log: logger}
}

// Subject returns the subject an event is published on.
func (s *Sink) Subject(e core.Event) string {
	subj := s.subject + "." + string(e.Type)
	if d := e.Record.Difficulty; d != "" {
		subj += "." + string(d)
	}
	return subj
}

// Handle matches the event bus handler signature.
func (s *Sink) Handle(_ context.Context, e core.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.log.Warn("nats encode failed", "error", err)
		return
	}
	subj := s.Subject(e)
	if err := s.pub.Publish(subj, data); err != nil {
		s.log.Warn("nats publish failed", "subject", subj, "error", err)
	}
}
