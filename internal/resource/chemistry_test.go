package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/planet-ai/internal/component"
)

func charged() *component.EnergyCell {
	c := component.NewEnergyCell()
	c.Charge(component.Sunray{Seq: 1})
	return c
}

func mustGenerator(t *testing.T, kinds ...BasicKind) *Generator {
	t.Helper()
	g, err := NewGenerator(kinds...)
	require.NoError(t, err)
	return g
}

func mustCombinator(t *testing.T, kinds ...ComplexKind) *Combinator {
	t.Helper()
	cb, err := NewCombinator(kinds...)
	require.NoError(t, err)
	return cb
}

func TestGeneratorMake(t *testing.T) {
	g := mustGenerator(t, Silicon, Hydrogen)
	assert.Equal(t, []BasicKind{Hydrogen, Silicon}, g.Recipes())

	cell := charged()
	h, err := g.Make(Hydrogen, cell)
	require.NoError(t, err)
	assert.Equal(t, Hydrogen, h.Kind())
	assert.True(t, h.Valid())
	assert.False(t, cell.IsCharged())

	_, err = g.Make(Hydrogen, cell)
	assert.ErrorIs(t, err, component.ErrCellEmpty)

	cell = charged()
	_, err = g.Make(Oxygen, cell)
	assert.ErrorIs(t, err, ErrRecipeUnavailable)
	assert.True(t, cell.IsCharged(), "missing recipe must not consume the charge")
}

func TestGeneratorRejectsUnknownKinds(t *testing.T) {
	_, err := NewGenerator(BasicKind(0))
	assert.Error(t, err)
	_, err = NewCombinator(ComplexKind(42))
	assert.Error(t, err)

	g := mustGenerator(t, Oxygen)
	assert.Panics(t, func() { _, _ = g.Make(BasicKind(9), charged()) })
}

func TestCombineWater(t *testing.T) {
	g := mustGenerator(t, AllBasic...)
	cb := mustCombinator(t, AllComplex...)

	h, _ := g.Make(Hydrogen, charged())
	o, _ := g.Make(Oxygen, charged())

	cell := charged()
	w, err := cb.Combine(CombineRequest{Target: Water, First: h, Second: o}, cell)
	require.NoError(t, err)
	assert.Equal(t, Water, w.Kind())
	assert.False(t, cell.IsCharged())
}

func TestCombineFullChain(t *testing.T) {
	g := mustGenerator(t, AllBasic...)
	cb := mustCombinator(t, AllComplex...)
	mk := func(k BasicKind) Basic {
		r, err := g.Make(k, charged())
		require.NoError(t, err)
		return r
	}
	combine := func(k ComplexKind, a, b Generic) Complex {
		r, err := cb.Combine(CombineRequest{Target: k, First: a, Second: b}, charged())
		require.NoError(t, err, "combine %s", k)
		return r
	}

	water := combine(Water, mk(Hydrogen), mk(Oxygen))
	diamond := combine(Diamond, mk(Carbon), mk(Carbon))
	life := combine(Life, water, mk(Carbon))
	robot := combine(Robot, mk(Silicon), life)
	water2 := combine(Water, mk(Hydrogen), mk(Oxygen))
	life2 := combine(Life, water2, mk(Carbon))
	water3 := combine(Water, mk(Hydrogen), mk(Oxygen))
	dolphin := combine(Dolphin, water3, life2)
	partner := combine(AIPartner, robot, diamond)

	assert.Equal(t, Dolphin, dolphin.Kind())
	assert.Equal(t, AIPartner, partner.Kind())
}

func TestCombineFailuresReturnInputs(t *testing.T) {
	g := mustGenerator(t, AllBasic...)
	h, _ := g.Make(Hydrogen, charged())
	o, _ := g.Make(Oxygen, charged())

	cases := []struct {
		name string
		cb   *Combinator
		req  CombineRequest
		cell *component.EnergyCell
	}{
		{"missing recipe", mustCombinator(t, Diamond), CombineRequest{Water, h, o}, charged()},
		{"swapped inputs", mustCombinator(t, Water), CombineRequest{Water, o, h}, charged()},
		{"forged input", mustCombinator(t, Water), CombineRequest{Water, Basic{}, o}, charged()},
		{"nil input", mustCombinator(t, Water), CombineRequest{Water, h, nil}, charged()},
		{"empty cell", mustCombinator(t, Water), CombineRequest{Water, h, o}, component.NewEnergyCell()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wasCharged := tc.cell.IsCharged()
			_, err := tc.cb.Combine(tc.req, tc.cell)
			var ce *CombineError
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Reason)
			assert.Equal(t, tc.req.First, ce.First)
			assert.Equal(t, tc.req.Second, ce.Second)
			assert.Equal(t, wasCharged, tc.cell.IsCharged())
		})
	}
}

func TestIngredientsAndNames(t *testing.T) {
	first, second := Ingredients(Robot)
	assert.Equal(t, "silicon", first)
	assert.Equal(t, "life", second)
	assert.Equal(t, "ai_partner", AIPartner.String())
	assert.Equal(t, "basic(0)", BasicKind(0).String())
}

func TestParseBasic(t *testing.T) {
	for _, k := range AllBasic {
		got, err := ParseBasic(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseBasic("water")
	assert.Error(t, err)
}
