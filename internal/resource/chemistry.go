package resource

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/planet-ai/internal/component"
)

// ErrRecipeUnavailable is returned when a planet lacks the requested recipe.
var ErrRecipeUnavailable = errors.New("recipe not available")

// Generator turns the energy of a cell into basic resources.
type Generator struct {
	recipes map[BasicKind]bool
}

// NewGenerator creates a generator offering kinds.
func NewGenerator(kinds ...BasicKind) (*Generator, error) {
	g := &Generator{recipes: make(map[BasicKind]bool, len(kinds))}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown basic resource %d", uint8(k))
		}
		g.recipes[k] = true
	}
	return g, nil
}

// Supports reports whether the generator offers k.
func (g *Generator) Supports(k BasicKind) bool {
	return g.recipes[k]
}

// Recipes returns the offered kinds in ascending order.
func (g *Generator) Recipes() []BasicKind {
	out := make([]BasicKind, 0, len(g.recipes))
	for k := range g.recipes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Make generates one unit of k, consuming the cell's charge. The cell is
// left untouched when the recipe is missing. An undeclared kind is a
// programming error and panics.
func (g *Generator) Make(k BasicKind, cell *component.EnergyCell) (Basic, error) {
	if !k.Valid() {
		panic(fmt.Sprintf("resource: unknown basic resource %d", uint8(k)))
	}
	if !g.recipes[k] {
		return Basic{}, fmt.Errorf("make %s: %w", k, ErrRecipeUnavailable)
	}
	if err := cell.Discharge(); err != nil {
		return Basic{}, fmt.Errorf("make %s: %w", k, err)
	}
	return Basic{kind: k}, nil
}

// ingredient matches one input slot of a recipe.
type ingredient struct {
	basic   BasicKind
	complex ComplexKind
}

func (in ingredient) String() string {
	if in.basic != 0 {
		return in.basic.String()
	}
	return in.complex.String()
}

func (in ingredient) matches(g Generic) bool {
	switch r := g.(type) {
	case Basic:
		return in.basic != 0 && r.Valid() && r.kind == in.basic
	case Complex:
		return in.complex != 0 && r.Valid() && r.kind == in.complex
	default:
		return false
	}
}

func basicIn(k BasicKind) ingredient     { return ingredient{basic: k} }
func complexIn(k ComplexKind) ingredient { return ingredient{complex: k} }

// recipeBook maps each complex resource to its ordered ingredients.
var recipeBook = map[ComplexKind][2]ingredient{
	Water:     {basicIn(Hydrogen), basicIn(Oxygen)},
	Diamond:   {basicIn(Carbon), basicIn(Carbon)},
	Life:      {complexIn(Water), basicIn(Carbon)},
	Robot:     {basicIn(Silicon), complexIn(Life)},
	Dolphin:   {complexIn(Water), complexIn(Life)},
	AIPartner: {complexIn(Robot), complexIn(Diamond)},
}

// Ingredients returns the ordered inputs of a complex recipe.
func Ingredients(k ComplexKind) (first, second string) {
	r := recipeBook[k]
	return r[0].String(), r[1].String()
}

// CombineRequest asks for Target to be built from First and Second.
type CombineRequest struct {
	Target ComplexKind
	First  Generic
	Second Generic
}

// CombineError reports a failed combination and hands the unconsumed
// inputs back to the caller.
type CombineError struct {
	Reason string
	First  Generic
	Second Generic
}

func (e *CombineError) Error() string {
	return fmt.Sprintf("combine failed: %s (returned %s, %s)", e.Reason, nameOf(e.First), nameOf(e.Second))
}

// Combinator builds complex resources from two inputs and one cell charge.
type Combinator struct {
	recipes map[ComplexKind]bool
}

// NewCombinator creates a combinator offering kinds.
func NewCombinator(kinds ...ComplexKind) (*Combinator, error) {
	cb := &Combinator{recipes: make(map[ComplexKind]bool, len(kinds))}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown complex resource %d", uint8(k))
		}
		cb.recipes[k] = true
	}
	return cb, nil
}

// Supports reports whether the combinator offers k.
func (cb *Combinator) Supports(k ComplexKind) bool {
	return cb.recipes[k]
}

// Recipes returns the offered kinds in ascending order.
func (cb *Combinator) Recipes() []ComplexKind {
	out := make([]ComplexKind, 0, len(cb.recipes))
	for k := range cb.recipes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Combine builds req.Target. On failure the returned error is always a
// *CombineError carrying both inputs, and the cell keeps its charge.
func (cb *Combinator) Combine(req CombineRequest, cell *component.EnergyCell) (Complex, error) {
	if !req.Target.Valid() {
		panic(fmt.Sprintf("resource: unknown complex resource %d", uint8(req.Target)))
	}
	fail := func(reason string) (Complex, error) {
		return Complex{}, &CombineError{Reason: reason, First: req.First, Second: req.Second}
	}

	if !cb.recipes[req.Target] {
		return fail(fmt.Sprintf("%s: %v", req.Target, ErrRecipeUnavailable))
	}
	r := recipeBook[req.Target]
	if !r[0].matches(req.First) || !r[1].matches(req.Second) {
		return fail(fmt.Sprintf("%s needs %s and %s, got %s and %s",
			req.Target, r[0], r[1], nameOf(req.First), nameOf(req.Second)))
	}
	if err := cell.Discharge(); err != nil {
		return fail(err.Error())
	}
	return Complex{kind: req.Target}, nil
}
