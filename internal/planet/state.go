// Package planet holds the physical state of one planet: its energy cells
// and the single rocket slot. The AI mutates it; the runtime owns it.
package planet

import (
	"errors"
	"fmt"

	"github.com/talgya/planet-ai/internal/component"
)

// ID identifies a planet within a galaxy.
type ID uint32

var (
	// ErrRocketSlotFull is returned when building while a rocket is held.
	ErrRocketSlotFull = errors.New("rocket slot already full")
	// ErrNoRocketSlot is returned when the planet cannot hold rockets.
	ErrNoRocketSlot = errors.New("planet cannot build rockets")
)

// State is the mutable planet state. Not safe for concurrent use.
type State struct {
	id        ID
	cells     []*component.EnergyCell
	rocket    *component.Rocket
	canRocket bool
	built     uint64
}

// Option configures a State.
type Option func(*State)

// WithCells sets the number of energy cells. The current model uses one.
func WithCells(n int) Option {
	return func(s *State) {
		if n < 1 {
			n = 1
		}
		s.cells = make([]*component.EnergyCell, n)
		for i := range s.cells {
			s.cells[i] = component.NewEnergyCell()
		}
	}
}

// WithoutRockets builds a planet that cannot defend itself.
func WithoutRockets() Option {
	return func(s *State) { s.canRocket = false }
}

// NewState creates a planet with one empty cell and an empty rocket slot.
func NewState(id ID, opts ...Option) *State {
	s := &State{
		id:        id,
		cells:     []*component.EnergyCell{component.NewEnergyCell()},
		canRocket: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the planet identifier.
func (s *State) ID() ID { return s.id }

// CellCount returns the number of energy cells.
func (s *State) CellCount() int { return len(s.cells) }

// Cell returns cell i. An out-of-range index is a programming error.
func (s *State) Cell(i int) *component.EnergyCell {
	if i < 0 || i >= len(s.cells) {
		panic(fmt.Sprintf("planet: cell index %d out of range [0,%d)", i, len(s.cells)))
	}
	return s.cells[i]
}

// ChargedCells counts charged cells.
func (s *State) ChargedCells() int {
	n := 0
	for _, c := range s.cells {
		if c.IsCharged() {
			n++
		}
	}
	return n
}

// CanHaveRocket reports whether the planet can build rockets at all.
func (s *State) CanHaveRocket() bool { return s.canRocket }

// HasRocket reports whether a rocket is held.
func (s *State) HasRocket() bool { return s.rocket != nil }

// TakeRocket removes and returns the held rocket, or nil.
func (s *State) TakeRocket() *component.Rocket {
	r := s.rocket
	s.rocket = nil
	return r
}

// BuildRocket consumes the charge of cell i and fills the rocket slot.
func (s *State) BuildRocket(i int) error {
	if !s.canRocket {
		return ErrNoRocketSlot
	}
	if s.rocket != nil {
		return ErrRocketSlotFull
	}
	if err := s.Cell(i).Discharge(); err != nil {
		return fmt.Errorf("build rocket from cell %d: %w", i, err)
	}
	s.built++
	s.rocket = &component.Rocket{Built: s.built}
	return nil
}

// RocketsBuilt returns how many rockets this planet has built.
func (s *State) RocketsBuilt() uint64 { return s.built }

// Snapshot is a read-only projection of the planet state.
type Snapshot struct {
	PlanetID      ID     `json:"planet_id"`
	EnergyCells   []bool `json:"energy_cells"`
	ChargedCells  int    `json:"charged_cells"`
	CanHaveRocket bool   `json:"can_have_rocket"`
	HasRocket     bool   `json:"has_rocket"`
	RocketsBuilt  uint64 `json:"rockets_built"`
}

// Snapshot projects the current state.
func (s *State) Snapshot() Snapshot {
	cells := make([]bool, len(s.cells))
	for i, c := range s.cells {
		cells[i] = c.IsCharged()
	}
	return Snapshot{
		PlanetID:      s.id,
		EnergyCells:   cells,
		ChargedCells:  s.ChargedCells(),
		CanHaveRocket: s.canRocket,
		HasRocket:     s.HasRocket(),
		RocketsBuilt:  s.built,
	}
}
