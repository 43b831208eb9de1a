// Package protocol defines the messages exchanged between a planet, the
// orchestrator that drives the galaxy, and the explorers visiting it.
//
// Each direction is a sealed interface; handlers switch on the concrete type.
package protocol

import (
	"github.com/talgya/planet-ai/internal/component"
	"github.com/talgya/planet-ai/internal/planet"
	"github.com/talgya/planet-ai/internal/resource"
)

// ExplorerID identifies an explorer.
type ExplorerID uint32

// ── Orchestrator → Planet ────────────────────────────────────────────

// OrchestratorMessage is a message sent by the orchestrator to a planet.
type OrchestratorMessage interface {
	Kind() string
	fromOrchestrator()
}

// SunrayEvent delivers a favorable event.
type SunrayEvent struct {
	Sunray component.Sunray
}

// AsteroidEvent delivers a hazard event.
type AsteroidEvent struct {
	Asteroid component.Asteroid
}

// StartAI activates the planet AI.
type StartAI struct{}

// StopAI deactivates the planet AI.
type StopAI struct{}

// KillPlanet terminates the planet run loop.
type KillPlanet struct{}

// InternalStateRequest asks for a snapshot of the planet state.
type InternalStateRequest struct{}

// IncomingExplorerRequest announces an explorer landing on the planet and
// hands over the channel its responses must go to.
type IncomingExplorerRequest struct {
	ExplorerID ExplorerID
	Sender     chan<- PlanetToExplorer
}

// OutgoingExplorerRequest announces an explorer leaving the planet.
type OutgoingExplorerRequest struct {
	ExplorerID ExplorerID
}

func (SunrayEvent) Kind() string             { return "Sunray" }
func (AsteroidEvent) Kind() string           { return "Asteroid" }
func (StartAI) Kind() string                 { return "StartPlanetAI" }
func (StopAI) Kind() string                  { return "StopPlanetAI" }
func (KillPlanet) Kind() string              { return "KillPlanet" }
func (InternalStateRequest) Kind() string    { return "InternalStateRequest" }
func (IncomingExplorerRequest) Kind() string { return "IncomingExplorerRequest" }
func (OutgoingExplorerRequest) Kind() string { return "OutgoingExplorerRequest" }

func (SunrayEvent) fromOrchestrator()             {}
func (AsteroidEvent) fromOrchestrator()           {}
func (StartAI) fromOrchestrator()                 {}
func (StopAI) fromOrchestrator()                  {}
func (KillPlanet) fromOrchestrator()              {}
func (InternalStateRequest) fromOrchestrator()    {}
func (IncomingExplorerRequest) fromOrchestrator() {}
func (OutgoingExplorerRequest) fromOrchestrator() {}

// ── Planet → Orchestrator ────────────────────────────────────────────

// PlanetToOrchestrator is a planet's answer to the orchestrator.
type PlanetToOrchestrator interface {
	Kind() string
	Planet() planet.ID
	toOrchestrator()
}

// SunrayAck acknowledges a sunray.
type SunrayAck struct {
	PlanetID planet.ID
}

// AsteroidAck answers an asteroid. A nil Rocket means the planet had no
// defense and is destroyed.
type AsteroidAck struct {
	PlanetID planet.ID
	Rocket   *component.Rocket
}

// StartAIResult acknowledges StartAI.
type StartAIResult struct {
	PlanetID planet.ID
}

// StopAIResult acknowledges StopAI.
type StopAIResult struct {
	PlanetID planet.ID
}

// KillPlanetResult acknowledges KillPlanet; the planet stops afterwards.
type KillPlanetResult struct {
	PlanetID planet.ID
}

// InternalStateResponse carries a state snapshot.
type InternalStateResponse struct {
	PlanetID planet.ID
	State    planet.Snapshot
}

// IncomingExplorerResponse acknowledges an explorer registration.
type IncomingExplorerResponse struct {
	PlanetID   planet.ID
	ExplorerID ExplorerID
	Err        error
}

// OutgoingExplorerResponse acknowledges an explorer departure.
type OutgoingExplorerResponse struct {
	PlanetID   planet.ID
	ExplorerID ExplorerID
	Err        error
}

func (SunrayAck) Kind() string                { return "SunrayAck" }
func (AsteroidAck) Kind() string              { return "AsteroidAck" }
func (StartAIResult) Kind() string            { return "StartPlanetAIResult" }
func (StopAIResult) Kind() string             { return "StopPlanetAIResult" }
func (KillPlanetResult) Kind() string         { return "KillPlanetResult" }
func (InternalStateResponse) Kind() string    { return "InternalStateResponse" }
func (IncomingExplorerResponse) Kind() string { return "IncomingExplorerResponse" }
func (OutgoingExplorerResponse) Kind() string { return "OutgoingExplorerResponse" }

func (m SunrayAck) Planet() planet.ID                { return m.PlanetID }
func (m AsteroidAck) Planet() planet.ID              { return m.PlanetID }
func (m StartAIResult) Planet() planet.ID            { return m.PlanetID }
func (m StopAIResult) Planet() planet.ID             { return m.PlanetID }
func (m KillPlanetResult) Planet() planet.ID         { return m.PlanetID }
func (m InternalStateResponse) Planet() planet.ID    { return m.PlanetID }
func (m IncomingExplorerResponse) Planet() planet.ID { return m.PlanetID }
func (m OutgoingExplorerResponse) Planet() planet.ID { return m.PlanetID }

func (SunrayAck) toOrchestrator()                {}
func (AsteroidAck) toOrchestrator()              {}
func (StartAIResult) toOrchestrator()            {}
func (StopAIResult) toOrchestrator()             {}
func (KillPlanetResult) toOrchestrator()         {}
func (InternalStateResponse) toOrchestrator()    {}
func (IncomingExplorerResponse) toOrchestrator() {}
func (OutgoingExplorerResponse) toOrchestrator() {}

// ── Explorer → Planet ────────────────────────────────────────────────

// ExplorerMessage is a request from an explorer on the planet.
type ExplorerMessage interface {
	Kind() string
	Explorer() ExplorerID
	fromExplorer()
}

// SupportedResourceRequest asks for the basic recipes.
type SupportedResourceRequest struct {
	ExplorerID ExplorerID
}

// SupportedCombinationRequest asks for the complex recipes.
type SupportedCombinationRequest struct {
	ExplorerID ExplorerID
}

// GenerateResourceRequest asks for one basic resource.
type GenerateResourceRequest struct {
	ExplorerID ExplorerID
	Resource   resource.BasicKind
}

// CombineResourceRequest asks for one complex resource built from two
// inputs owned by the explorer.
type CombineResourceRequest struct {
	ExplorerID ExplorerID
	Request    resource.CombineRequest
}

// AvailableEnergyCellRequest asks how many cells are charged.
type AvailableEnergyCellRequest struct {
	ExplorerID ExplorerID
}

func (SupportedResourceRequest) Kind() string    { return "SupportedResourceRequest" }
func (SupportedCombinationRequest) Kind() string { return "SupportedCombinationRequest" }
func (GenerateResourceRequest) Kind() string     { return "GenerateResourceRequest" }
func (CombineResourceRequest) Kind() string      { return "CombineResourceRequest" }
func (AvailableEnergyCellRequest) Kind() string  { return "AvailableEnergyCellRequest" }

func (m SupportedResourceRequest) Explorer() ExplorerID    { return m.ExplorerID }
func (m SupportedCombinationRequest) Explorer() ExplorerID { return m.ExplorerID }
func (m GenerateResourceRequest) Explorer() ExplorerID     { return m.ExplorerID }
func (m CombineResourceRequest) Explorer() ExplorerID      { return m.ExplorerID }
func (m AvailableEnergyCellRequest) Explorer() ExplorerID  { return m.ExplorerID }

func (SupportedResourceRequest) fromExplorer()    {}
func (SupportedCombinationRequest) fromExplorer() {}
func (GenerateResourceRequest) fromExplorer()     {}
func (CombineResourceRequest) fromExplorer()      {}
func (AvailableEnergyCellRequest) fromExplorer()  {}

// ── Planet → Explorer ────────────────────────────────────────────────

// PlanetToExplorer is a planet's answer to an explorer.
type PlanetToExplorer interface {
	Kind() string
	toExplorer()
}

// SupportedResourceResponse lists the basic recipes.
type SupportedResourceResponse struct {
	Resources []resource.BasicKind
}

// SupportedCombinationResponse lists the complex recipes.
type SupportedCombinationResponse struct {
	Combinations []resource.ComplexKind
}

// GenerateResourceResponse carries the generated resource, or nil.
type GenerateResourceResponse struct {
	Resource *resource.Basic
}

// CombineResourceResponse carries either the product or the failure with
// the returned inputs.
type CombineResourceResponse struct {
	Product *resource.Complex
	Err     *resource.CombineError
}

// AvailableEnergyCellResponse counts the charged cells.
type AvailableEnergyCellResponse struct {
	Available uint32
}

func (SupportedResourceResponse) Kind() string    { return "SupportedResourceResponse" }
func (SupportedCombinationResponse) Kind() string { return "SupportedCombinationResponse" }
func (GenerateResourceResponse) Kind() string     { return "GenerateResourceResponse" }
func (CombineResourceResponse) Kind() string      { return "CombineResourceResponse" }
func (AvailableEnergyCellResponse) Kind() string  { return "AvailableEnergyCellResponse" }

func (SupportedResourceResponse) toExplorer()    {}
func (SupportedCombinationResponse) toExplorer() {}
func (GenerateResourceResponse) toExplorer()     {}
func (CombineResourceResponse) toExplorer()      {}
func (AvailableEnergyCellResponse) toExplorer()  {}
