// Package frequency estimates the relative likelihood of sunrays versus
// asteroids from sparse, irregularly timed observations.
//
// Two competing intensities decay exponentially with a shared time constant
// tau = halfLife / ln 2. Every event adds a fixed impulse 1/tau to its own
// intensity, so recent events dominate older ones. The probability that the
// next event is a sunray is the sunray share of the total intensity.
package frequency

import (
	"math"
	"time"

	"github.com/talgya/planet-ai/internal/clock"
)

// initialIntensity is the prior for both processes (maximally uncertain).
const initialIntensity = 0.5

// Estimator tracks the two decaying intensities. It is not safe for
// concurrent use: the planet run loop owns it exclusively.
type Estimator struct {
	tau     float64 // seconds; 0 means every elapsed instant forgets everything
	impulse float64

	sunIntensity      float64
	asteroidIntensity float64
	probability       float64 // cached sunray probability

	lastUpdate time.Time
	primed     bool // lastUpdate holds a baseline

	minSamplingInterval time.Duration

	pausedAt  time.Time
	resumedAt time.Time
	paused    bool

	clock clock.Clock
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithClock replaces the system clock, typically with a clock.Mock.
func WithClock(c clock.Clock) Option {
	return func(e *Estimator) {
		if c != nil {
			e.clock = c
		}
	}
}

// New creates an estimator. A non-positive halfLife is not rejected: it
// yields tau = 0, which forgets all evidence as soon as any time passes.
func New(halfLife, minSamplingInterval time.Duration, opts ...Option) *Estimator {
	tau := halfLife.Seconds() / math.Ln2
	impulse := 1.0
	if tau > 0 {
		impulse = 1 / tau
	} else {
		tau = 0
	}

	e := &Estimator{
		tau:                 tau,
		impulse:             impulse,
		sunIntensity:        initialIntensity,
		asteroidIntensity:   initialIntensity,
		probability:         0.5,
		minSamplingInterval: minSamplingInterval,
		clock:               clock.System(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordSunray registers a favorable event.
func (e *Estimator) RecordSunray() {
	e.recordEvent(true)
}

// RecordAsteroid registers a hazard event.
func (e *Estimator) RecordAsteroid() {
	e.recordEvent(false)
}

func (e *Estimator) recordEvent(sunray bool) {
	// Events always decay, regardless of the sampling throttle.
	e.decay(true)

	if sunray {
		e.sunIntensity += e.impulse
	} else {
		e.asteroidIntensity += e.impulse
	}
	e.updateProbability()
}

// SunrayProbability applies a throttled passive decay and returns the
// cached probability that the next event is a sunray.
func (e *Estimator) SunrayProbability() float64 {
	e.decay(false)
	return e.probability
}

// Pause marks the instant the owning AI was stopped. A second Pause before
// Resume keeps the first mark.
func (e *Estimator) Pause() {
	if e.paused {
		return
	}
	e.pausedAt = e.clock.Now()
	e.paused = true
}

// Resume shifts the decay baseline forward by the paused interval, so no
// decay accrues for the time the AI was stopped.
func (e *Estimator) Resume() {
	e.resumedAt = e.clock.Now()
	if !e.paused {
		return
	}
	if e.primed {
		e.lastUpdate = e.lastUpdate.Add(e.resumedAt.Sub(e.pausedAt))
	}
	e.paused = false
}

func (e *Estimator) decay(force bool) {
	now := e.clock.Now()
	if !e.primed {
		e.lastUpdate = now
		e.primed = true
		return
	}

	elapsed := now.Sub(e.lastUpdate)
	if !force && elapsed < e.minSamplingInterval {
		return
	}

	factor := e.decayFactor(elapsed)
	e.sunIntensity *= factor
	e.asteroidIntensity *= factor
	e.lastUpdate = now

	if force {
		e.updateProbability()
	}
}

func (e *Estimator) decayFactor(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	if e.tau == 0 {
		return 0
	}
	return math.Exp(-elapsed.Seconds() / e.tau)
}

func (e *Estimator) updateProbability() {
	sum := e.sunIntensity + e.asteroidIntensity
	if sum > 0 {
		e.probability = e.sunIntensity / sum
	} else {
		e.probability = 0.5
	}
}

// Tau returns the decay time constant in seconds.
func (e *Estimator) Tau() float64 { return e.tau }

// Impulse returns the increment applied on each event.
func (e *Estimator) Impulse() float64 { return e.impulse }

// Intensities returns the raw sunray and asteroid intensities without
// applying any decay.
func (e *Estimator) Intensities() (sun, asteroid float64) {
	return e.sunIntensity, e.asteroidIntensity
}

// LastUpdate returns the decay baseline, if one has been set.
func (e *Estimator) LastUpdate() (time.Time, bool) {
	return e.lastUpdate, e.primed
}

// Paused reports whether Pause was called without a matching Resume.
func (e *Estimator) Paused() bool { return e.paused }

// Snapshot is a read-only copy of the estimator state.
type Snapshot struct {
	Tau               float64 `json:"tau"`
	SunIntensity      float64 `json:"sun_intensity"`
	AsteroidIntensity float64 `json:"asteroid_intensity"`
	SunrayProbability float64 `json:"sunray_probability"`
	Paused            bool    `json:"paused"`
}

// Snapshot copies the current state. It does not decay.
func (e *Estimator) Snapshot() Snapshot {
	return Snapshot{
		Tau:               e.tau,
		SunIntensity:      e.sunIntensity,
		AsteroidIntensity: e.asteroidIntensity,
		SunrayProbability: e.probability,
		Paused:            e.paused,
	}
}
