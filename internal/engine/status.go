package engine

import (
	"time"

	"github.com/talgya/planet-ai/internal/frequency"
	"github.com/talgya/planet-ai/internal/planet"
)

// Counters tracks what the run loop has seen.
type Counters struct {
	Handled   uint64 `json:"handled"`
	Dropped   uint64 `json:"dropped"`
	Sunrays   uint64 `json:"sunrays"`
	Asteroids uint64 `json:"asteroids"`
	Deflected uint64 `json:"deflected"`
	Granted   uint64 `json:"granted"`
	Refused   uint64 `json:"refused"`
	Lost      uint64 `json:"lost"` // granted products the explorer never received
	Destroyed bool   `json:"destroyed"`
}

// Status is a point-in-time view of a planet, safe to read from any
// goroutine.
type Status struct {
	PlanetID   planet.ID           `json:"planet_id"`
	Running    bool                `json:"running"`
	AIActive   bool                `json:"ai_active"`
	RandomMode bool                `json:"random_mode"`
	Estimator  *frequency.Snapshot `json:"estimator,omitempty"`
	State      planet.Snapshot     `json:"state"`
	Explorers  int                 `json:"explorers"`
	Counters   Counters            `json:"counters"`
	StartedAt  time.Time           `json:"started_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Status returns the status published after the last handled message.
func (p *Planet) Status() Status {
	if s := p.status.Load(); s != nil {
		return *s
	}
	return Status{PlanetID: p.ID()}
}

// publish must only be called from the run loop goroutine.
func (p *Planet) publish() {
	s := &Status{
		PlanetID:   p.ID(),
		Running:    p.running,
		AIActive:   p.ai.Active(),
		RandomMode: p.ai.RandomMode(),
		State:      p.state.Snapshot(),
		Explorers:  len(p.explorers),
		Counters:   p.stats,
		StartedAt:  p.started,
		UpdatedAt:  p.clock.Now(),
	}
	if est := p.ai.Estimator(); est != nil {
		snap := est.Snapshot()
		s.Estimator = &snap
	}
	p.status.Store(s)
}
