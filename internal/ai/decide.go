package ai

import (
	"fmt"
	"strconv"

	"github.com/talgya/planet-ai/internal/eventlog"
)

// Kind selects which threshold a production request is judged against.
type Kind uint8

const (
	Basic Kind = iota
	Complex
)

func (k Kind) action() string {
	if k == Complex {
		return "generate_complex_resource"
	}
	return "generate_basic_resource"
}

func (k Kind) String() string {
	switch k {
	case Basic:
		return "basic"
	case Complex:
		return "complex"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ShouldProduce reports whether the planet should spend its charged cell
// on a resource of the given kind.
//
// With a rocket held the planet survives one asteroid, so the risk is the
// chance of two asteroids before the next sunray, pAsteroid squared.
func (a *AI) ShouldProduce(kind Kind, cellCharged, hasRocket bool) bool {
	ok, _ := a.decide(kind, cellCharged, hasRocket)
	return ok
}

// decide returns the verdict and the fields explaining it.
func (a *AI) decide(kind Kind, cellCharged, hasRocket bool) (bool, eventlog.Payload) {
	p := eventlog.Payload{"action": kind.action()}
	if !cellCharged {
		p["reason"] = "cell_not_charged"
		return false, p
	}
	p["random_mode"] = strconv.FormatBool(a.randomMode)
	p["has_rocket"] = strconv.FormatBool(hasRocket)

	threshold := a.threshold(kind)
	var ok bool
	switch {
	case a.randomMode:
		sample := a.entropy.Float64()
		p["random_sample"] = ff(sample)
		p["threshold"] = ff(threshold)
		ok = sample > threshold
	case a.estimator != nil:
		pSunray := a.estimator.SunrayProbability()
		pAsteroid := 1 - pSunray
		p["p_sunray"] = ff(pSunray)
		p["p_asteroid"] = ff(pAsteroid)
		risk := pAsteroid
		if hasRocket {
			risk = pAsteroid * pAsteroid
			p["p_asteroid_squared"] = ff(risk)
		}
		ok = risk <= threshold
	}

	p["decision"] = strconv.FormatBool(ok)
	return ok, p
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
