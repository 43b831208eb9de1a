// Package resource implements the chemistry a planet offers to explorers:
// basic resources generated straight from an energy cell, and complex
// resources combined from two inputs.
package resource

import "fmt"

// BasicKind enumerates basic resources. The zero value is invalid.
type BasicKind uint8

const (
	Oxygen BasicKind = iota + 1
	Hydrogen
	Carbon
	Silicon
)

// AllBasic lists every basic kind in declaration order.
var AllBasic = []BasicKind{Oxygen, Hydrogen, Carbon, Silicon}

// Valid reports whether k is a declared kind.
func (k BasicKind) Valid() bool {
	return k >= Oxygen && k <= Silicon
}

func (k BasicKind) String() string {
	switch k {
	case Oxygen:
		return "oxygen"
	case Hydrogen:
		return "hydrogen"
	case Carbon:
		return "carbon"
	case Silicon:
		return "silicon"
	default:
		return fmt.Sprintf("basic(%d)", uint8(k))
	}
}

// ParseBasic looks up a basic kind by its String form.
func ParseBasic(name string) (BasicKind, error) {
	for _, k := range AllBasic {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown basic resource %q", name)
}

// ComplexKind enumerates complex resources. The zero value is invalid.
type ComplexKind uint8

const (
	Water ComplexKind = iota + 1
	Diamond
	Life
	Robot
	Dolphin
	AIPartner
)

// AllComplex lists every complex kind in declaration order.
var AllComplex = []ComplexKind{Water, Diamond, Life, Robot, Dolphin, AIPartner}

// Valid reports whether k is a declared kind.
func (k ComplexKind) Valid() bool {
	return k >= Water && k <= AIPartner
}

func (k ComplexKind) String() string {
	switch k {
	case Water:
		return "water"
	case Diamond:
		return "diamond"
	case Life:
		return "life"
	case Robot:
		return "robot"
	case Dolphin:
		return "dolphin"
	case AIPartner:
		return "ai_partner"
	default:
		return fmt.Sprintf("complex(%d)", uint8(k))
	}
}

// Generic is a resource of either family, as handed back to a caller.
type Generic interface {
	Name() string
	generic()
}

// Basic is a generated basic resource. Only a Generator mints valid ones.
type Basic struct {
	kind BasicKind
}

// Kind returns the resource kind.
func (b Basic) Kind() BasicKind { return b.kind }

// Name returns the kind name.
func (b Basic) Name() string { return b.kind.String() }

// Valid reports whether b was produced by a Generator.
func (b Basic) Valid() bool { return b.kind.Valid() }

func (Basic) generic() {}

// Complex is a combined resource. Only a Combinator mints valid ones.
type Complex struct {
	kind ComplexKind
}

// Kind returns the resource kind.
func (c Complex) Kind() ComplexKind { return c.kind }

// Name returns the kind name.
func (c Complex) Name() string { return c.kind.String() }

// Valid reports whether c was produced by a Combinator.
func (c Complex) Valid() bool { return c.kind.Valid() }

func (Complex) generic() {}

func nameOf(g Generic) string {
	if g == nil {
		return "nothing"
	}
	return g.Name()
}
