// Package ai decides how a planet spends its stored energy.
//
// An AI reacts to orchestrator events (sunrays, asteroids, lifecycle
// commands) and to explorer requests for resources. It keeps a running
// estimate of how likely the next event is a sunray and grants production
// only while the risk of being caught without a rocket stays within the
// configured tolerance.
//
// The AI is owned by a single run loop and is not safe for concurrent use.
package ai

import (
	"fmt"
	"math"
	"time"

	"github.com/talgya/planet-ai/internal/clock"
	"github.com/talgya/planet-ai/internal/entropy"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/frequency"
)

// Config holds the tunables of a planet AI.
type Config struct {
	// RandomMode replaces the estimator with a uniform coin: production is
	// granted when the sample exceeds the threshold.
	RandomMode bool

	// Risk tolerance for basic and complex production, clamped to [0,1].
	BasicThreshold   float64
	ComplexThreshold float64

	HalfLife            time.Duration
	MinSamplingInterval time.Duration
}

// AI is the decision-making state of one planet.
type AI struct {
	active           bool
	randomMode       bool
	basicThreshold   float64
	complexThreshold float64

	estimator *frequency.Estimator // nil disables adaptive production
	entropy   entropy.Source
	events    *eventlog.Logger
}

type options struct {
	clock       clock.Clock
	entropy     entropy.Source
	events      *eventlog.Logger
	noEstimator bool
}

// Option configures an AI.
type Option func(*options)

// WithClock sets the time source of the estimator. Nil is ignored.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithEntropy sets the sample source used in random mode. Nil is ignored.
func WithEntropy(s entropy.Source) Option {
	return func(o *options) {
		if s != nil {
			o.entropy = s
		}
	}
}

// WithLogger sets the planet event logger.
func WithLogger(l *eventlog.Logger) Option {
	return func(o *options) { o.events = l }
}

// WithoutEstimator builds an AI with no estimator. Adaptive decisions then
// always refuse production.
func WithoutEstimator() Option {
	return func(o *options) { o.noEstimator = true }
}

// New creates an inactive AI.
func New(cfg Config, opts ...Option) *AI {
	o := options{clock: clock.System(), entropy: entropy.Crypto()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &AI{
		randomMode:       cfg.RandomMode,
		basicThreshold:   clamp01(cfg.BasicThreshold),
		complexThreshold: clamp01(cfg.ComplexThreshold),
		entropy:          o.entropy,
		events:           o.events,
	}
	if !o.noEstimator {
		a.estimator = frequency.New(cfg.HalfLife, cfg.MinSamplingInterval, frequency.WithClock(o.clock))
	}
	return a
}

// Active reports whether the AI reacts to messages.
func (a *AI) Active() bool { return a.active }

// RandomMode reports whether decisions are sampled instead of estimated.
func (a *AI) RandomMode() bool { return a.randomMode }

// BasicThreshold returns the clamped basic production tolerance.
func (a *AI) BasicThreshold() float64 { return a.basicThreshold }

// ComplexThreshold returns the clamped complex production tolerance.
func (a *AI) ComplexThreshold() float64 { return a.complexThreshold }

// Estimator returns the frequency estimator, or nil when absent.
func (a *AI) Estimator() *frequency.Estimator { return a.estimator }

func (a *AI) threshold(k Kind) float64 {
	switch k {
	case Basic:
		return a.basicThreshold
	case Complex:
		return a.complexThreshold
	default:
		panic(fmt.Sprintf("ai: unknown production kind %s", k))
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
