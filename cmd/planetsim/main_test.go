package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/planet-ai/internal/cosmos"
	"github.com/talgya/planet-ai/internal/engine"
	"github.com/talgya/planet-ai/internal/persistence"
)

func TestOutcomeOf(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "destroyed", outcomeOf(done, cosmos.Report{Destroyed: true}, nil))
	assert.Equal(t, "failed", outcomeOf(live, cosmos.Report{}, errors.New("boom")))
	assert.Equal(t, "interrupted", outcomeOf(done, cosmos.Report{}, nil))
	assert.Equal(t, "survived", outcomeOf(live, cosmos.Report{Steps: 10}, nil))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, "survived", cosmos.Report{Steps: 1500, Sunrays: 1200, Accepted: 3, Refused: 1}, engine.Status{
		PlanetID:  2,
		StartedAt: time.Now().Add(-time.Minute),
	})
	out := buf.String()
	assert.Contains(t, out, "Planet 2 survived after 1,500 steps")
	assert.Contains(t, out, "sunrays             1,200")
	assert.Contains(t, out, "acceptance rate     75.0%")
	assert.NotContains(t, out, "unanswered")
}

func TestPrintEventsOldestFirst(t *testing.T) {
	var buf bytes.Buffer
	err := printEvents(&buf, []persistence.EventRecord{
		{ID: 2, Type: "internal_planet_action", Channel: "debug", Payload: map[string]string{"b": "2", "a": "1"}},
		{ID: 1, Type: "message_explorer_to_planet", Channel: "trace", Participant: "explorer:3"},
	})
	assert.NoError(t, err)

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("explorer:3")), bytes.Index(buf.Bytes(), []byte("a=1 b=2")))
	assert.Contains(t, out, "ID")
}
