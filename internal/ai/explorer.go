package ai

import (
	"errors"
	"fmt"

	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/planet"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

// ReasonConservingEnergy is the CombineError reason of a refused
// combination. Explorers cannot tell a refusal from a failed recipe.
const ReasonConservingEnergy = "conserving energy"

// HandleExplorer handles one explorer request and returns the response, or
// nil when the AI is inactive. Requests for resource kinds that do not
// exist panic.
func (a *AI) HandleExplorer(st *planet.State, gen *resource.Generator, comb *resource.Combinator, msg protocol.ExplorerMessage) protocol.PlanetToExplorer {
	who := eventlog.Explorer(uint32(msg.Explorer()))
	if !a.active {
		a.drop(st, who, msg.Kind())
		return nil
	}

	var resp protocol.PlanetToExplorer
	switch m := msg.(type) {
	case protocol.SupportedResourceRequest:
		resp = protocol.SupportedResourceResponse{Resources: gen.Recipes()}
	case protocol.SupportedCombinationRequest:
		resp = protocol.SupportedCombinationResponse{Combinations: comb.Recipes()}
	case protocol.GenerateResourceRequest:
		resp = a.generate(st, gen, who, m.Resource)
	case protocol.CombineResourceRequest:
		resp = a.combine(st, comb, who, m.Request)
	case protocol.AvailableEnergyCellRequest:
		var n uint32
		if st.Cell(0).IsCharged() {
			n = 1
		}
		resp = protocol.AvailableEnergyCellResponse{Available: n}
	default:
		panic(fmt.Sprintf("ai: unknown explorer message %T", msg))
	}

	a.reply(st, who, eventlog.MessagePlanetToExplorer, eventlog.Trace, resp.Kind())
	return resp
}

func (a *AI) generate(st *planet.State, gen *resource.Generator, who *eventlog.Participant, k resource.BasicKind) protocol.PlanetToExplorer {
	if !k.Valid() {
		panic(fmt.Sprintf("ai: unknown basic resource %d", uint8(k)))
	}

	ok, p := a.decide(Basic, st.Cell(0).IsCharged(), st.HasRocket())
	p["resource"] = k.String()
	a.action(st, who, p)
	if !ok {
		return protocol.GenerateResourceResponse{}
	}

	b, err := gen.Make(k, st.Cell(0))
	if err != nil {
		a.action(st, who, eventlog.Payload{"action": "make_basic", "resource": k.String(), "error": err.Error()})
		return protocol.GenerateResourceResponse{}
	}
	return protocol.GenerateResourceResponse{Resource: &b}
}

func (a *AI) combine(st *planet.State, comb *resource.Combinator, who *eventlog.Participant, req resource.CombineRequest) protocol.PlanetToExplorer {
	if !req.Target.Valid() {
		panic(fmt.Sprintf("ai: unknown complex resource %d", uint8(req.Target)))
	}

	ok, p := a.decide(Complex, st.Cell(0).IsCharged(), st.HasRocket())
	p["resource"] = req.Target.String()
	a.action(st, who, p)
	if !ok {
		return protocol.CombineResourceResponse{Err: &resource.CombineError{
			Reason: ReasonConservingEnergy,
			First:  req.First,
			Second: req.Second,
		}}
	}

	c, err := comb.Combine(req, st.Cell(0))
	if err != nil {
		var ce *resource.CombineError
		if !errors.As(err, &ce) {
			ce = &resource.CombineError{Reason: err.Error(), First: req.First, Second: req.Second}
		}
		a.action(st, who, eventlog.Payload{"action": "combine", "resource": req.Target.String(), "error": ce.Reason})
		return protocol.CombineResourceResponse{Err: ce}
	}
	return protocol.CombineResourceResponse{Product: &c}
}
