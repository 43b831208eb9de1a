package ai

import (
	"strconv"

	"github.com/talgya/planet-ai/internal/component"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/planet"
)

// HandleAsteroid defends the planet against one asteroid. It launches the
// held rocket, or builds one from a charged cell and launches it at once.
// A nil result means the planet had no defense. An inactive AI never
// defends.
func (a *AI) HandleAsteroid(st *planet.State, _ component.Asteroid) *component.Rocket {
	if !a.active {
		return nil
	}
	if a.estimator != nil {
		a.estimator.RecordAsteroid()
	}

	var r *component.Rocket
	switch {
	case st.HasRocket():
		r = st.TakeRocket()
	case st.Cell(0).IsCharged():
		if err := st.BuildRocket(0); err == nil {
			r = st.TakeRocket()
		}
	}

	a.action(st, eventlog.Orchestrator(), eventlog.Payload{
		"action":    "handle_asteroid",
		"deflected": strconv.FormatBool(r != nil),
	})
	return r
}
