// Package cosmos simulates the galaxy around a planet: the space weather
// deciding between sunrays and asteroids, and an orchestrator with one
// explorer that drive a planet through its channels.
package cosmos

import (
	"math/rand"
	"sync/atomic"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/planet-ai/internal/component"
)

// WeatherConfig shapes the sunray probability over time.
type WeatherConfig struct {
	Base        float64 // probability at step 0 before noise
	Drift       float64 // subtracted per step so every run ends eventually
	Amplitude   float64 // peak noise deviation around the trend
	Frequency   float64 // noise samples per step
	Octaves     int
	Persistence float64
	Seed        int64 // 0 picks a random seed
}

// DefaultWeather mirrors a sunny sector that slowly turns hostile.
func DefaultWeather() WeatherConfig {
	return WeatherConfig{
		Base:        0.8,
		Drift:       0.001,
		Amplitude:   0.1,
		Frequency:   0.05,
		Octaves:     3,
		Persistence: 0.5,
	}
}

// Weather yields the probability that the next event is a sunray.
type Weather struct {
	cfg   WeatherConfig
	noise opensimplex.Noise
}

// NewWeather creates a weather model.
func NewWeather(cfg WeatherConfig) *Weather {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Weather{cfg: cfg, noise: opensimplex.NewNormalized(seed)}
}

// SunrayProbability returns the sunray probability at step, in [0,1].
func (w *Weather) SunrayProbability(step int) float64 {
	p := w.cfg.Base - w.cfg.Drift*float64(step)
	if w.cfg.Amplitude != 0 {
		n := octaveNoise(w.noise, float64(step), 0, w.cfg.Octaves, w.cfg.Frequency, w.cfg.Persistence)
		p += w.cfg.Amplitude * (2*n - 1)
	}
	return clamp01(p)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Forge mints sunrays and asteroids with increasing sequence numbers.
type Forge struct {
	sunrays   atomic.Uint64
	asteroids atomic.Uint64
}

// Sunray mints the next sunray.
func (f *Forge) Sunray() component.Sunray {
	return component.Sunray{Seq: f.sunrays.Add(1)}
}

// Asteroid mints the next asteroid.
func (f *Forge) Asteroid() component.Asteroid {
	return component.Asteroid{Seq: f.asteroids.Add(1)}
}
