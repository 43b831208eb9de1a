package ai

import (
	"fmt"

	"github.com/talgya/planet-ai/internal/component"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/planet"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

// HandleOrchestrator handles one orchestrator message and returns the
// response, or nil when the message is dropped. Only StartAI, StopAI and
// InternalStateRequest are answered while the AI is inactive.
//
// KillPlanet and explorer registration belong to the run loop; routing
// them here panics.
func (a *AI) HandleOrchestrator(st *planet.State, gen *resource.Generator, comb *resource.Combinator, msg protocol.OrchestratorMessage) protocol.PlanetToOrchestrator {
	switch m := msg.(type) {
	case protocol.StartAI:
		return a.start(st)
	case protocol.StopAI:
		return a.stop(st)
	case protocol.InternalStateRequest:
		return a.internalState(st)
	case protocol.SunrayEvent:
		if !a.active {
			a.drop(st, eventlog.Orchestrator(), msg.Kind())
			return nil
		}
		return a.sunray(st, m.Sunray)
	case protocol.AsteroidEvent:
		if !a.active {
			a.drop(st, eventlog.Orchestrator(), msg.Kind())
			return nil
		}
		r := a.HandleAsteroid(st, m.Asteroid)
		a.reply(st, eventlog.Orchestrator(), eventlog.MessagePlanetToOrchestrator, eventlog.Trace, "AsteroidAck")
		return protocol.AsteroidAck{PlanetID: st.ID(), Rocket: r}
	case protocol.KillPlanet, protocol.IncomingExplorerRequest, protocol.OutgoingExplorerRequest:
		panic(fmt.Sprintf("ai: run loop message %s reached the dispatcher", msg.Kind()))
	default:
		panic(fmt.Sprintf("ai: unknown orchestrator message %T", msg))
	}
}

func (a *AI) sunray(st *planet.State, s component.Sunray) protocol.PlanetToOrchestrator {
	// Bank the current charge as a rocket before it is overwritten.
	if st.Cell(0).IsCharged() && !st.HasRocket() {
		if err := st.BuildRocket(0); err != nil {
			a.action(st, eventlog.Orchestrator(), eventlog.Payload{
				"action": "build_rocket",
				"error":  err.Error(),
			})
		}
	}
	st.Cell(0).Charge(s)

	if a.estimator != nil {
		a.estimator.RecordSunray()
		sun, asteroid := a.estimator.Intensities()
		a.action(st, eventlog.Orchestrator(), eventlog.Payload{
			"action":             "update_sunray_counter",
			"sun_intensity":      ff(sun),
			"asteroid_intensity": ff(asteroid),
			"sunray_probability": ff(a.estimator.SunrayProbability()),
		})
	}

	a.reply(st, eventlog.Orchestrator(), eventlog.MessagePlanetToOrchestrator, eventlog.Trace, "SunrayAck")
	return protocol.SunrayAck{PlanetID: st.ID()}
}

func (a *AI) start(st *planet.State) protocol.PlanetToOrchestrator {
	a.active = true
	if a.estimator != nil {
		a.estimator.Resume()
	}
	a.reply(st, eventlog.Orchestrator(), eventlog.MessagePlanetToOrchestrator, eventlog.Trace, "StartPlanetAIResult")
	return protocol.StartAIResult{PlanetID: st.ID()}
}

func (a *AI) stop(st *planet.State) protocol.PlanetToOrchestrator {
	a.active = false
	if a.estimator != nil {
		a.estimator.Pause()
	}
	a.reply(st, eventlog.Orchestrator(), eventlog.MessagePlanetToOrchestrator, eventlog.Trace, "StopPlanetAIResult")
	return protocol.StopAIResult{PlanetID: st.ID()}
}

func (a *AI) internalState(st *planet.State) protocol.PlanetToOrchestrator {
	a.reply(st, eventlog.Orchestrator(), eventlog.MessagePlanetToOrchestrator, eventlog.Debug, "InternalStateResponse")
	return protocol.InternalStateResponse{PlanetID: st.ID(), State: st.Snapshot()}
}

func (a *AI) drop(st *planet.State, who *eventlog.Participant, kind string) {
	a.action(st, who, eventlog.Payload{"action": "drop", "message": kind, "reason": "ai_inactive"})
}

func (a *AI) action(st *planet.State, who *eventlog.Participant, p eventlog.Payload) {
	a.events.Log(uint32(st.ID()), who, eventlog.InternalPlanetAction, eventlog.Debug, p)
}

func (a *AI) reply(st *planet.State, who *eventlog.Participant, typ eventlog.EventType, ch eventlog.Channel, kind string) {
	a.events.Log(uint32(st.ID()), who, typ, ch, eventlog.Payload{"message": kind})
}
