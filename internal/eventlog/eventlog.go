// Package eventlog records planet events: messages in and out, and the
// internal actions the AI takes. Events go to slog and to any number of
// sinks, such as the SQLite journal.
package eventlog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/talgya/planet-ai/internal/clock"
)

// EventType classifies an event.
type EventType uint8

const (
	InternalPlanetAction EventType = iota
	MessageOrchestratorToPlanet
	MessagePlanetToOrchestrator
	MessageExplorerToPlanet
	MessagePlanetToExplorer
)

func (t EventType) String() string {
	switch t {
	case InternalPlanetAction:
		return "internal_planet_action"
	case MessageOrchestratorToPlanet:
		return "orchestrator_to_planet"
	case MessagePlanetToOrchestrator:
		return "planet_to_orchestrator"
	case MessageExplorerToPlanet:
		return "explorer_to_planet"
	case MessagePlanetToExplorer:
		return "planet_to_explorer"
	default:
		return "unknown"
	}
}

// Channel is the verbosity of an event.
type Channel uint8

const (
	Trace Channel = iota
	Debug
	Info
	Warning
	Error
)

// LevelTrace sits below slog's debug level.
const LevelTrace = slog.LevelDebug - 4

// Level maps a channel to a slog level.
func (c Channel) Level() slog.Level {
	switch c {
	case Trace:
		return LevelTrace
	case Debug:
		return slog.LevelDebug
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Channel) String() string {
	switch c {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Payload carries the event fields.
type Payload map[string]string

// Participant is the other side of a message event.
type Participant struct {
	Role string `json:"role"` // "orchestrator" or "explorer"
	ID   uint32 `json:"id"`
}

// Orchestrator is the orchestrator participant.
func Orchestrator() *Participant {
	return &Participant{Role: "orchestrator"}
}

// Explorer returns an explorer participant.
func Explorer(id uint32) *Participant {
	return &Participant{Role: "explorer", ID: id}
}

// Event is one logged occurrence.
type Event struct {
	PlanetID    uint32       `json:"planet_id"`
	Participant *Participant `json:"participant,omitempty"`
	Type        EventType    `json:"type"`
	Channel     Channel      `json:"channel"`
	Payload     Payload      `json:"payload"`
	At          time.Time    `json:"at"`
}

// Sink receives every logged event.
type Sink interface {
	Write(Event) error
}

// Logger fans events out to slog and the sinks. A nil *Logger discards
// everything.
type Logger struct {
	log   *slog.Logger
	sinks []Sink
	clock clock.Clock
}

// New creates a Logger. A nil slog logger uses slog.Default().
func New(l *slog.Logger, sinks ...Sink) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l, sinks: sinks, clock: clock.System()}
}

// SetClock replaces the clock that timestamps events. Nil is ignored.
func (l *Logger) SetClock(c clock.Clock) {
	if l == nil || c == nil {
		return
	}
	l.clock = c
}

// AddSink attaches another sink.
func (l *Logger) AddSink(s Sink) {
	if l == nil || s == nil {
		return
	}
	l.sinks = append(l.sinks, s)
}

// Log records an event for planetID.
func (l *Logger) Log(planetID uint32, who *Participant, typ EventType, ch Channel, p Payload) {
	if l == nil {
		return
	}
	ev := Event{
		PlanetID:    planetID,
		Participant: who,
		Type:        typ,
		Channel:     ch,
		Payload:     p,
		At:          l.clock.Now(),
	}

	level := ch.Level()
	if l.log.Enabled(context.Background(), level) {
		attrs := make([]slog.Attr, 0, len(p)+3)
		attrs = append(attrs,
			slog.Uint64("planet", uint64(planetID)),
			slog.String("type", typ.String()),
		)
		if who != nil {
			attrs = append(attrs, slog.String("with", who.Role), slog.Uint64("with_id", uint64(who.ID)))
		}
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.String(k, p[k]))
		}
		l.log.LogAttrs(context.Background(), level, "planet event", attrs...)
	}

	for _, s := range l.sinks {
		if err := s.Write(ev); err != nil {
			l.log.Warn("event sink write failed", "error", err)
		}
	}
}
