package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planet-ai/internal/component"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

// mint produces a basic resource the way an explorer would obtain one.
func mint(t *testing.T, f *fixture, k resource.BasicKind) resource.Basic {
	t.Helper()
	cell := component.NewEnergyCell()
	cell.Charge(component.Sunray{})
	b, err := f.gen.Make(k, cell)
	require.NoError(t, err)
	return b
}

func TestExplorerDroppedWhileInactive(t *testing.T) {
	f := newFixture(t, adaptive(1))
	f.st.Cell(0).Charge(component.Sunray{})

	msgs := []protocol.ExplorerMessage{
		protocol.SupportedResourceRequest{ExplorerID: 3},
		protocol.SupportedCombinationRequest{ExplorerID: 3},
		protocol.GenerateResourceRequest{ExplorerID: 3, Resource: resource.Carbon},
		protocol.CombineResourceRequest{ExplorerID: 3, Request: resource.CombineRequest{Target: resource.Water}},
		protocol.AvailableEnergyCellRequest{ExplorerID: 3},
	}
	for _, m := range msgs {
		assert.Nil(t, f.explorer(m), m.Kind())
	}
	assert.True(t, f.st.Cell(0).IsCharged())
}

func TestSupportedRecipes(t *testing.T) {
	f := newFixture(t, adaptive(1))
	var err error
	f.gen, err = resource.NewGenerator(resource.Silicon, resource.Oxygen)
	require.NoError(t, err)
	f.comb, err = resource.NewCombinator(resource.Robot, resource.Water)
	require.NoError(t, err)
	f.start(t)

	assert.Equal(t,
		protocol.SupportedResourceResponse{Resources: []resource.BasicKind{resource.Oxygen, resource.Silicon}},
		f.explorer(protocol.SupportedResourceRequest{}))
	assert.Equal(t,
		protocol.SupportedCombinationResponse{Combinations: []resource.ComplexKind{resource.Water, resource.Robot}},
		f.explorer(protocol.SupportedCombinationRequest{}))
}

func TestGenerateResource(t *testing.T) {
	f := newFixture(t, adaptive(1))
	f.start(t)

	// Uncharged cell: nothing to spend.
	assert.Equal(t, protocol.GenerateResourceResponse{},
		f.explorer(protocol.GenerateResourceRequest{Resource: resource.Hydrogen}))

	f.st.Cell(0).Charge(component.Sunray{})
	resp := f.explorer(protocol.GenerateResourceRequest{Resource: resource.Hydrogen})
	require.IsType(t, protocol.GenerateResourceResponse{}, resp)
	got := resp.(protocol.GenerateResourceResponse).Resource
	require.NotNil(t, got)
	assert.Equal(t, resource.Hydrogen, got.Kind())
	assert.False(t, f.st.Cell(0).IsCharged())
}

func TestGenerateResourceDenied(t *testing.T) {
	f := newFixture(t, adaptive(0))
	f.st.Cell(0).Charge(component.Sunray{})
	f.start(t)

	assert.Equal(t, protocol.GenerateResourceResponse{},
		f.explorer(protocol.GenerateResourceRequest{Resource: resource.Oxygen}))
	assert.True(t, f.st.Cell(0).IsCharged(), "refusal keeps the charge")
}

func TestGenerateResourceMissingRecipe(t *testing.T) {
	f := newFixture(t, adaptive(1))
	var err error
	f.gen, err = resource.NewGenerator(resource.Oxygen)
	require.NoError(t, err)
	f.st.Cell(0).Charge(component.Sunray{})
	f.start(t)

	assert.Equal(t, protocol.GenerateResourceResponse{},
		f.explorer(protocol.GenerateResourceRequest{Resource: resource.Silicon}))
	assert.True(t, f.st.Cell(0).IsCharged())
	assert.Len(t, f.sink.actions("make_basic"), 1)
}

func TestUnknownResourcePanics(t *testing.T) {
	f := newFixture(t, adaptive(0))
	f.start(t)
	assert.Panics(t, func() {
		f.explorer(protocol.GenerateResourceRequest{Resource: resource.BasicKind(42)})
	})
	assert.Panics(t, func() {
		f.explorer(protocol.CombineResourceRequest{Request: resource.CombineRequest{Target: resource.ComplexKind(0)}})
	})
}

func TestCombineDeniedReturnsInputs(t *testing.T) {
	f := newFixture(t, adaptive(0))
	f.st.Cell(0).Charge(component.Sunray{})
	f.start(t)

	h, o := mint(t, f, resource.Hydrogen), mint(t, f, resource.Oxygen)
	resp := f.explorer(protocol.CombineResourceRequest{
		ExplorerID: 5,
		Request:    resource.CombineRequest{Target: resource.Water, First: h, Second: o},
	})

	require.IsType(t, protocol.CombineResourceResponse{}, resp)
	got := resp.(protocol.CombineResourceResponse)
	assert.Nil(t, got.Product)
	require.NotNil(t, got.Err)
	assert.Equal(t, ReasonConservingEnergy, got.Err.Reason)
	assert.Equal(t, resource.Generic(h), got.Err.First)
	assert.Equal(t, resource.Generic(o), got.Err.Second)
	assert.True(t, f.st.Cell(0).IsCharged())
}

func TestCombineGranted(t *testing.T) {
	f := newFixture(t, adaptive(1))
	f.st.Cell(0).Charge(component.Sunray{})
	f.start(t)

	h, o := mint(t, f, resource.Hydrogen), mint(t, f, resource.Oxygen)
	resp := f.explorer(protocol.CombineResourceRequest{
		Request: resource.CombineRequest{Target: resource.Water, First: h, Second: o},
	})

	got := resp.(protocol.CombineResourceResponse)
	require.Nil(t, got.Err)
	require.NotNil(t, got.Product)
	assert.Equal(t, resource.Water, got.Product.Kind())
	assert.False(t, f.st.Cell(0).IsCharged())
}

func TestCombineFailureKeepsCollaboratorReason(t *testing.T) {
	f := newFixture(t, adaptive(1))
	f.st.Cell(0).Charge(component.Sunray{})
	f.start(t)

	c, o := mint(t, f, resource.Carbon), mint(t, f, resource.Oxygen)
	resp := f.explorer(protocol.CombineResourceRequest{
		Request: resource.CombineRequest{Target: resource.Diamond, First: c, Second: o},
	})

	got := resp.(protocol.CombineResourceResponse)
	assert.Nil(t, got.Product)
	require.NotNil(t, got.Err)
	assert.NotEqual(t, ReasonConservingEnergy, got.Err.Reason)
	assert.Equal(t, resource.Generic(c), got.Err.First)
	assert.Equal(t, resource.Generic(o), got.Err.Second)
	assert.True(t, f.st.Cell(0).IsCharged())
}

func TestAvailableEnergyCell(t *testing.T) {
	f := newFixture(t, adaptive(0.5))
	f.start(t)

	assert.Equal(t, protocol.AvailableEnergyCellResponse{Available: 0},
		f.explorer(protocol.AvailableEnergyCellRequest{}))
	f.st.Cell(0).Charge(component.Sunray{})
	assert.Equal(t, protocol.AvailableEnergyCellResponse{Available: 1},
		f.explorer(protocol.AvailableEnergyCellRequest{}))
}
