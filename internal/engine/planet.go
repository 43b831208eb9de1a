// Package engine runs one planet: it owns the planet state and the AI,
// reads the orchestrator and explorer channels, and handles one message at
// a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/talgya/planet-ai/internal/ai"
	"github.com/talgya/planet-ai/internal/clock"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/planet"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

var (
	// ErrDestroyed is returned by Run when an asteroid hit an undefended planet.
	ErrDestroyed = errors.New("planet destroyed")
	// ErrUnknownExplorer is reported when an unregistered explorer leaves.
	ErrUnknownExplorer = errors.New("explorer not on planet")
	// ErrNoSender is reported when an explorer lands without a response channel.
	ErrNoSender = errors.New("explorer has no response channel")
)

// Channels are the planet's links to the rest of the galaxy.
type Channels struct {
	FromOrchestrator <-chan protocol.OrchestratorMessage
	ToOrchestrator   chan<- protocol.PlanetToOrchestrator
	FromExplorers    <-chan protocol.ExplorerMessage
}

// Planet is the run loop of a single planet.
type Planet struct {
	state *planet.State
	ai    *ai.AI
	gen   *resource.Generator
	comb  *resource.Combinator
	ch    Channels

	explorers map[protocol.ExplorerID]chan<- protocol.PlanetToExplorer
	events    *eventlog.Logger
	clock     clock.Clock

	stats   Counters
	started time.Time
	running bool
	status  atomic.Pointer[Status]
}

// Option configures a Planet.
type Option func(*Planet)

// WithLogger sets the planet event logger.
func WithLogger(l *eventlog.Logger) Option {
	return func(p *Planet) { p.events = l }
}

// WithClock sets the clock used for status timestamps.
func WithClock(c clock.Clock) Option {
	return func(p *Planet) {
		if c != nil {
			p.clock = c
		}
	}
}

// New assembles a planet. The generator must offer at least one recipe and
// every channel must be set.
func New(st *planet.State, brain *ai.AI, gen *resource.Generator, comb *resource.Combinator, ch Channels, opts ...Option) (*Planet, error) {
	switch {
	case st == nil:
		return nil, errors.New("engine: nil planet state")
	case brain == nil:
		return nil, errors.New("engine: nil ai")
	case gen == nil || comb == nil:
		return nil, errors.New("engine: nil generator or combinator")
	case len(gen.Recipes()) == 0:
		return nil, fmt.Errorf("engine: planet %d has no basic recipes", st.ID())
	case ch.FromOrchestrator == nil || ch.ToOrchestrator == nil || ch.FromExplorers == nil:
		return nil, errors.New("engine: all channels are required")
	}

	p := &Planet{
		state:     st,
		ai:        brain,
		gen:       gen,
		comb:      comb,
		ch:        ch,
		explorers: make(map[protocol.ExplorerID]chan<- protocol.PlanetToExplorer),
		clock:     clock.System(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.publish()
	return p, nil
}

// ID returns the planet identifier.
func (p *Planet) ID() planet.ID { return p.state.ID() }

// Run processes messages until the planet is killed, destroyed, the
// orchestrator channel closes or ctx is cancelled. Only destruction is
// reported as an error.
func (p *Planet) Run(ctx context.Context) error {
	p.started = p.clock.Now()
	p.running = true
	p.publish()
	slog.Info("planet started", "planet", p.ID())

	defer func() {
		p.running = false
		p.publish()
		slog.Info("planet stopped", "planet", p.ID(), "handled", p.stats.Handled)
	}()

	fromExplorers := p.ch.FromExplorers
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-p.ch.FromOrchestrator:
			if !ok {
				slog.Warn("orchestrator channel closed", "planet", p.ID())
				return nil
			}
			stop, err := p.handleOrchestrator(ctx, msg)
			p.publish()
			if stop {
				return err
			}

		case msg, ok := <-fromExplorers:
			if !ok {
				fromExplorers = nil
				continue
			}
			p.handleExplorer(msg)
			p.publish()
		}
	}
}

// handleOrchestrator reports whether the loop must stop, and why.
func (p *Planet) handleOrchestrator(ctx context.Context, msg protocol.OrchestratorMessage) (bool, error) {
	p.stats.Handled++
	p.received(eventlog.Orchestrator(), eventlog.MessageOrchestratorToPlanet, msg.Kind())

	switch m := msg.(type) {
	case protocol.KillPlanet:
		p.reply(ctx, protocol.KillPlanetResult{PlanetID: p.ID()})
		slog.Info("planet killed", "planet", p.ID())
		return true, nil

	case protocol.IncomingExplorerRequest:
		var err error
		if m.Sender == nil {
			err = ErrNoSender
		} else {
			p.explorers[m.ExplorerID] = m.Sender
		}
		p.reply(ctx, protocol.IncomingExplorerResponse{PlanetID: p.ID(), ExplorerID: m.ExplorerID, Err: err})
		return false, nil

	case protocol.OutgoingExplorerRequest:
		var err error
		if _, ok := p.explorers[m.ExplorerID]; ok {
			delete(p.explorers, m.ExplorerID)
		} else {
			err = fmt.Errorf("explorer %d: %w", m.ExplorerID, ErrUnknownExplorer)
		}
		p.reply(ctx, protocol.OutgoingExplorerResponse{PlanetID: p.ID(), ExplorerID: m.ExplorerID, Err: err})
		return false, nil
	}

	resp := p.ai.HandleOrchestrator(p.state, p.gen, p.comb, msg)
	if resp == nil {
		p.stats.Dropped++
		return false, nil
	}

	switch r := resp.(type) {
	case protocol.SunrayAck:
		p.stats.Sunrays++
	case protocol.AsteroidAck:
		p.stats.Asteroids++
		if r.Rocket == nil {
			p.reply(ctx, resp)
			p.stats.Destroyed = true
			slog.Warn("planet destroyed", "planet", p.ID())
			return true, ErrDestroyed
		}
		p.stats.Deflected++
	}
	p.reply(ctx, resp)
	return false, nil
}

func (p *Planet) handleExplorer(msg protocol.ExplorerMessage) {
	p.stats.Handled++
	id := msg.Explorer()
	who := eventlog.Explorer(uint32(id))
	p.received(who, eventlog.MessageExplorerToPlanet, msg.Kind())

	out, ok := p.explorers[id]
	if !ok {
		p.stats.Dropped++
		slog.Warn("request from explorer not on planet", "planet", p.ID(), "explorer", id, "message", msg.Kind())
		return
	}

	resp := p.ai.HandleExplorer(p.state, p.gen, p.comb, msg)
	if resp == nil {
		p.stats.Dropped++
		return
	}
	p.countExplorer(resp)

	select {
	case out <- resp:
	default:
		p.stats.Dropped++
		if product := productOf(resp); product != "" {
			p.stats.Lost++
			slog.Warn("explorer channel full, product lost", "planet", p.ID(), "explorer", id, "resource", product)
			return
		}
		slog.Warn("explorer channel full, response dropped", "planet", p.ID(), "explorer", id, "message", resp.Kind())
	}
}

// productOf names the resource a response hands over, if any. Its energy
// is already spent.
func productOf(resp protocol.PlanetToExplorer) string {
	switch r := resp.(type) {
	case protocol.GenerateResourceResponse:
		if r.Resource != nil {
			return r.Resource.Name()
		}
	case protocol.CombineResourceResponse:
		if r.Product != nil {
			return r.Product.Name()
		}
	}
	return ""
}

func (p *Planet) countExplorer(resp protocol.PlanetToExplorer) {
	switch r := resp.(type) {
	case protocol.GenerateResourceResponse:
		if r.Resource != nil {
			p.stats.Granted++
		} else {
			p.stats.Refused++
		}
	case protocol.CombineResourceResponse:
		if r.Product != nil {
			p.stats.Granted++
		} else {
			p.stats.Refused++
		}
	}
}

// reply blocks until the orchestrator takes the response or ctx ends.
func (p *Planet) reply(ctx context.Context, resp protocol.PlanetToOrchestrator) {
	select {
	case p.ch.ToOrchestrator <- resp:
	case <-ctx.Done():
		slog.Debug("response abandoned", "planet", p.ID(), "message", resp.Kind())
	}
}

func (p *Planet) received(who *eventlog.Participant, typ eventlog.EventType, kind string) {
	p.events.Log(uint32(p.ID()), who, typ, eventlog.Trace, eventlog.Payload{"message": kind})
}
