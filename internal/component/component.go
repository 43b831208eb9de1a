// Package component holds the physical pieces a planet works with: the
// sunray and asteroid events sent by the orchestrator, the energy cell
// charged by sunrays, and the rocket built from a charged cell.
package component

import "errors"

// ErrCellEmpty is returned when discharging an uncharged cell.
var ErrCellEmpty = errors.New("energy cell is not charged")

// Sunray is the payload of a favorable event. Only the orchestrator's forge
// should mint one.
type Sunray struct {
	Seq uint64 `json:"seq"`
}

// Asteroid is the payload of a hazard event.
type Asteroid struct {
	Seq uint64 `json:"seq"`
}

// Rocket absorbs exactly one asteroid.
type Rocket struct {
	Built uint64 `json:"built"` // sequence number of the rocket on its planet
}

// EnergyCell stores at most one unit of energy.
type EnergyCell struct {
	charged bool
	source  Sunray
}

// NewEnergyCell returns an empty cell.
func NewEnergyCell() *EnergyCell {
	return &EnergyCell{}
}

// IsCharged reports whether the cell holds energy.
func (c *EnergyCell) IsCharged() bool {
	return c.charged
}

// Charge stores the energy of s. Charging a full cell replaces its charge:
// energy from the previous sunray is lost.
func (c *EnergyCell) Charge(s Sunray) {
	c.charged = true
	c.source = s
}

// Discharge consumes the stored energy.
func (c *EnergyCell) Discharge() error {
	if !c.charged {
		return ErrCellEmpty
	}
	c.charged = false
	c.source = Sunray{}
	return nil
}

// Source returns the sunray the cell was last charged from.
func (c *EnergyCell) Source() (Sunray, bool) {
	return c.source, c.charged
}
