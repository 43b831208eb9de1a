package planet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planet-ai/internal/component"
)

func TestBuildAndTakeRocket(t *testing.T) {
	s := NewState(7)
	assert.Equal(t, ID(7), s.ID())
	assert.Equal(t, 1, s.CellCount())
	assert.False(t, s.HasRocket())
	assert.Nil(t, s.TakeRocket())

	assert.ErrorIs(t, s.BuildRocket(0), component.ErrCellEmpty)

	s.Cell(0).Charge(component.Sunray{Seq: 1})
	require.NoError(t, s.BuildRocket(0))
	assert.True(t, s.HasRocket())
	assert.False(t, s.Cell(0).IsCharged())

	s.Cell(0).Charge(component.Sunray{Seq: 2})
	assert.ErrorIs(t, s.BuildRocket(0), ErrRocketSlotFull)
	assert.True(t, s.Cell(0).IsCharged(), "full slot must not consume the charge")

	r := s.TakeRocket()
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.Built)
	assert.False(t, s.HasRocket())
}

func TestPlanetWithoutRockets(t *testing.T) {
	s := NewState(1, WithoutRockets())
	s.Cell(0).Charge(component.Sunray{})
	assert.ErrorIs(t, s.BuildRocket(0), ErrNoRocketSlot)
	assert.True(t, s.Cell(0).IsCharged())
}

func TestCellIndexOutOfRange(t *testing.T) {
	s := NewState(1)
	assert.Panics(t, func() { s.Cell(1) })
}

func TestSnapshot(t *testing.T) {
	s := NewState(3, WithCells(2))
	s.Cell(1).Charge(component.Sunray{})
	s.Cell(0).Charge(component.Sunray{})
	require.NoError(t, s.BuildRocket(0))

	want := Snapshot{
		PlanetID:      3,
		EnergyCells:   []bool{false, true},
		ChargedCells:  1,
		CanHaveRocket: true,
		HasRocket:     true,
		RocketsBuilt:  1,
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
