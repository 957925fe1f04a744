package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorymatch/core"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	err  error
	msgs []message
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, message{subject: subj, data: data})
	return nil
}

func TestSinkPublishesScoreEvents(t *testing.T) {
	pub := &fakePublisher{}
	sink := New(pub, "", nil)

	rec := core.Record{ID: "r1", Score: core.Score{Name: "ann", Seconds: 40, Moves: 12, Difficulty: core.DifficultyMedium}}
	sink.Handle(context.Background(), core.NewScoreSubmitted(rec))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "memorymatch.events.score_submitted.medium", pub.msgs[0].subject)
	var ev core.Event
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &ev))
	assert.Equal(t, "r1", ev.Record.ID)
}

func TestSinkCustomSubject(t *testing.T) {
	sink := New(&fakePublisher{}, "games", nil)
	assert.Equal(t, "games.score_submitted", sink.Subject(core.Event{Type: core.EventScoreSubmitted}))
}

func TestSinkPublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	sink := New(pub, "x", nil)
	assert.NotPanics(t, func() {
		sink.Handle(context.Background(), core.NewScoreSubmitted(core.Record{ID: "r"}))
	})
	assert.Empty(t, pub.msgs)
}
