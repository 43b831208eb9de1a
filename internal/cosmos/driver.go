package cosmos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/planet-ai/internal/entropy"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

// ErrNoResponse is returned when the planet does not answer in time.
var ErrNoResponse = errors.New("planet did not respond")

// DriverConfig controls a scenario run.
type DriverConfig struct {
	MaxSteps                   int // 0 runs until the planet is destroyed
	ExplorerRequestProbability float64
	ExplorerID                 protocol.ExplorerID
	Resource                   resource.BasicKind
	StepDelay                  time.Duration
	ResponseTimeout            time.Duration
}

// DefaultDriver returns the settings of the standard scenario.
func DefaultDriver() DriverConfig {
	return DriverConfig{
		MaxSteps:                   1000,
		ExplorerRequestProbability: 0.4,
		Resource:                   resource.Hydrogen,
		StepDelay:                  10 * time.Millisecond,
		ResponseTimeout:            time.Second,
	}
}

// Links are the driver's ends of the planet channels.
type Links struct {
	ToPlanet   chan<- protocol.OrchestratorMessage
	FromPlanet <-chan protocol.PlanetToOrchestrator
	Explorer   chan<- protocol.ExplorerMessage
}

// Report summarizes a scenario run.
type Report struct {
	Steps              int     `json:"steps"`
	Sunrays            int     `json:"sunrays"`
	AsteroidsDeflected int     `json:"asteroids_deflected"`
	Destroyed          bool    `json:"destroyed"`
	Accepted           int     `json:"accepted"`
	Refused            int     `json:"refused"`
	Unanswered         int     `json:"unanswered"`
	FinalSunrayChance  float64 `json:"final_sunray_chance"`
}

// AcceptanceRate is the share of answered requests that were granted.
func (r Report) AcceptanceRate() float64 {
	answered := r.Accepted + r.Refused
	if answered == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(answered)
}

// Driver plays the orchestrator and a single explorer against one planet.
type Driver struct {
	cfg     DriverConfig
	weather *Weather
	forge   Forge
	rng     entropy.Source
	links   Links
	inbox   chan protocol.PlanetToExplorer
	stale   int // replies owed to requests that already timed out
}

// inboxSize bounds the replies queued for the explorer, late ones included.
const inboxSize = 16

// NewDriver creates a driver.
func NewDriver(cfg DriverConfig, w *Weather, rng entropy.Source, links Links) *Driver {
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = time.Second
	}
	if rng == nil {
		rng = entropy.Crypto()
	}
	return &Driver{
		cfg:     cfg,
		weather: w,
		rng:     rng,
		links:   links,
		inbox:   make(chan protocol.PlanetToExplorer, inboxSize),
	}
}

// Run starts the planet AI, lands the explorer and plays events until the
// planet is destroyed, MaxSteps is reached or ctx is cancelled. A planet
// that survives MaxSteps is killed at the end. Cancellation is not an error.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	rep, err := d.play(ctx)
	if err != nil && ctx.Err() != nil {
		return rep, nil
	}
	return rep, err
}

func (d *Driver) play(ctx context.Context) (Report, error) {
	var rep Report

	if _, err := d.call(ctx, protocol.StartAI{}); err != nil {
		return rep, err
	}
	resp, err := d.call(ctx, protocol.IncomingExplorerRequest{ExplorerID: d.cfg.ExplorerID, Sender: d.inbox})
	if err != nil {
		return rep, err
	}
	if in, ok := resp.(protocol.IncomingExplorerResponse); ok && in.Err != nil {
		return rep, fmt.Errorf("land explorer: %w", in.Err)
	}

	for d.cfg.MaxSteps == 0 || rep.Steps < d.cfg.MaxSteps {
		if ctx.Err() != nil {
			return rep, nil
		}
		rep.FinalSunrayChance = d.weather.SunrayProbability(rep.Steps)
		rep.Steps++

		if d.rng.Float64() < rep.FinalSunrayChance {
			if _, err := d.call(ctx, protocol.SunrayEvent{Sunray: d.forge.Sunray()}); err != nil {
				return rep, err
			}
			rep.Sunrays++
		} else {
			resp, err := d.call(ctx, protocol.AsteroidEvent{Asteroid: d.forge.Asteroid()})
			if err != nil {
				return rep, err
			}
			ack, ok := resp.(protocol.AsteroidAck)
			if !ok {
				return rep, fmt.Errorf("asteroid answered with %s", resp.Kind())
			}
			if ack.Rocket == nil {
				rep.Destroyed = true
				slog.Info("planet destroyed", "steps", rep.Steps, "sunrays", rep.Sunrays)
				return rep, nil
			}
			rep.AsteroidsDeflected++
		}

		if d.rng.Float64() < d.cfg.ExplorerRequestProbability {
			if err := d.request(ctx, &rep); err != nil {
				return rep, err
			}
		}

		if d.cfg.StepDelay > 0 {
			select {
			case <-time.After(d.cfg.StepDelay):
			case <-ctx.Done():
				return rep, nil
			}
		}
	}

	if _, err := d.call(ctx, protocol.KillPlanet{}); err != nil {
		return rep, err
	}
	return rep, nil
}

// request asks the planet for one basic resource on behalf of the explorer.
// The planet answers in order, so replies to requests that timed out are
// skipped before the answer to this one is counted.
func (d *Driver) request(ctx context.Context, rep *Report) error {
	d.drain()

	msg := protocol.GenerateResourceRequest{ExplorerID: d.cfg.ExplorerID, Resource: d.cfg.Resource}
	timer := time.NewTimer(d.cfg.ResponseTimeout)
	defer timer.Stop()

	select {
	case d.links.Explorer <- msg:
	case <-timer.C:
		return fmt.Errorf("send %s: %w", msg.Kind(), ErrNoResponse)
	case <-ctx.Done():
		return nil
	}

	for {
		select {
		case resp := <-d.inbox:
			if d.stale > 0 {
				d.stale--
				continue
			}
			gen, ok := resp.(protocol.GenerateResourceResponse)
			switch {
			case !ok:
				return fmt.Errorf("generate request answered with %s", resp.Kind())
			case gen.Resource != nil:
				rep.Accepted++
			default:
				rep.Refused++
			}
			return nil
		case <-timer.C:
			rep.Unanswered++
			d.stale++
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// drain discards late replies that already arrived.
func (d *Driver) drain() {
	for d.stale > 0 {
		select {
		case <-d.inbox:
			d.stale--
		default:
			return
		}
	}
}

// call sends msg and waits for the planet's answer.
// Cancellation of the parent context is returned as is.
func (d *Driver) call(parent context.Context, msg protocol.OrchestratorMessage) (protocol.PlanetToOrchestrator, error) {
	ctx, cancel := context.WithTimeout(parent, d.cfg.ResponseTimeout)
	defer cancel()

	select {
	case d.links.ToPlanet <- msg:
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("send %s: %w", msg.Kind(), ErrNoResponse)
	}
	select {
	case resp := <-d.links.FromPlanet:
		return resp, nil
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("await reply to %s: %w", msg.Kind(), ErrNoResponse)
	}
}
