// Package config loads planetsim settings: defaults, then an optional YAML
// file, then PLANET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/talgya/planet-ai/internal/ai"
	"github.com/talgya/planet-ai/internal/cosmos"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLANET_"

// Config is the root configuration. Planet fields read PLANET_ID,
// PLANET_CELLS and PLANET_ROCKETS; sections read PLANET_<SECTION>_<FIELD>.
type Config struct {
	Planet   PlanetConfig  `yaml:"planet" json:"planet"`
	AI       AIConfig      `yaml:"ai" envPrefix:"AI_" json:"ai"`
	Sim      SimConfig     `yaml:"sim" envPrefix:"SIM_" json:"sim"`
	Journal  JournalConfig `yaml:"journal" envPrefix:"JOURNAL_" json:"journal"`
	API      APIConfig     `yaml:"api" envPrefix:"API_" json:"api"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL" json:"log_level"`
}

// PlanetConfig describes the planet body.
type PlanetConfig struct {
	ID      uint32 `yaml:"id" env:"ID" json:"id"`
	Cells   int    `yaml:"cells" env:"CELLS" json:"cells"`
	Rockets bool   `yaml:"rockets" env:"ROCKETS" json:"rockets"`
}

// AIConfig mirrors ai.Config.
type AIConfig struct {
	RandomMode          bool          `yaml:"random_mode" env:"RANDOM_MODE" json:"random_mode"`
	BasicThreshold      float64       `yaml:"basic_threshold" env:"BASIC_THRESHOLD" json:"basic_threshold"`
	ComplexThreshold    float64       `yaml:"complex_threshold" env:"COMPLEX_THRESHOLD" json:"complex_threshold"`
	HalfLife            time.Duration `yaml:"half_life" env:"HALF_LIFE" json:"half_life"`
	MinSamplingInterval time.Duration `yaml:"min_sampling_interval" env:"MIN_SAMPLING_INTERVAL" json:"min_sampling_interval"`
}

// SimConfig drives the simulated galaxy.
type SimConfig struct {
	MaxSteps                   int           `yaml:"max_steps" env:"MAX_STEPS" json:"max_steps"`
	ExplorerRequestProbability float64       `yaml:"explorer_request_probability" env:"EXPLORER_REQUEST_PROBABILITY" json:"explorer_request_probability"`
	ExplorerID                 uint32        `yaml:"explorer_id" env:"EXPLORER_ID" json:"explorer_id"`
	Resource                   string        `yaml:"resource" env:"RESOURCE" json:"resource"`
	StepDelay                  time.Duration `yaml:"step_delay" env:"STEP_DELAY" json:"step_delay"`
	ResponseTimeout            time.Duration `yaml:"response_timeout" env:"RESPONSE_TIMEOUT" json:"response_timeout"`
	Weather                    WeatherConfig `yaml:"weather" envPrefix:"WEATHER_" json:"weather"`
}

// WeatherConfig mirrors cosmos.WeatherConfig.
type WeatherConfig struct {
	Base        float64 `yaml:"base" env:"BASE" json:"base"`
	Drift       float64 `yaml:"drift" env:"DRIFT" json:"drift"`
	Amplitude   float64 `yaml:"amplitude" env:"AMPLITUDE" json:"amplitude"`
	Frequency   float64 `yaml:"frequency" env:"FREQUENCY" json:"frequency"`
	Octaves     int     `yaml:"octaves" env:"OCTAVES" json:"octaves"`
	Persistence float64 `yaml:"persistence" env:"PERSISTENCE" json:"persistence"`
	Seed        int64   `yaml:"seed" env:"SEED" json:"seed"`
}

// JournalConfig locates the SQLite journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path" env:"PATH" json:"path"`
}

// APIConfig configures the HTTP observation endpoint. An empty address
// disables it.
type APIConfig struct {
	Addr          string  `yaml:"addr" env:"ADDR" json:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second" env:"RATE_PER_SECOND" json:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst" env:"RATE_BURST" json:"rate_burst"`
}

// Default returns the built-in settings.
func Default() *Config {
	w := cosmos.DefaultWeather()
	d := cosmos.DefaultDriver()
	return &Config{
		Planet: PlanetConfig{ID: 1, Cells: 1, Rockets: true},
		AI: AIConfig{
			BasicThreshold:      0.5,
			ComplexThreshold:    0.7,
			HalfLife:            time.Second,
			MinSamplingInterval: 10 * time.Millisecond,
		},
		Sim: SimConfig{
			MaxSteps:                   d.MaxSteps,
			ExplorerRequestProbability: d.ExplorerRequestProbability,
			ExplorerID:                 1,
			Resource:                   d.Resource.String(),
			StepDelay:                  d.StepDelay,
			ResponseTimeout:            d.ResponseTimeout,
			Weather: WeatherConfig{
				Base:        w.Base,
				Drift:       w.Drift,
				Amplitude:   w.Amplitude,
				Frequency:   w.Frequency,
				Octaves:     w.Octaves,
				Persistence: w.Persistence,
			},
		},
		Journal:  JournalConfig{Path: "data/planet.db"},
		API:      APIConfig{Addr: "127.0.0.1:8080", RatePerSecond: 5, RateBurst: 20},
		LogLevel: "info",
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Planet.Cells >= 1, "planet.cells must be at least 1, got %d", c.Planet.Cells)
	check(unit(c.AI.BasicThreshold), "ai.basic_threshold must be in [0,1], got %v", c.AI.BasicThreshold)
	check(unit(c.AI.ComplexThreshold), "ai.complex_threshold must be in [0,1], got %v", c.AI.ComplexThreshold)
	check(c.AI.HalfLife > 0, "ai.half_life must be positive, got %s", c.AI.HalfLife)
	check(c.AI.MinSamplingInterval >= 0, "ai.min_sampling_interval must not be negative, got %s", c.AI.MinSamplingInterval)
	check(c.Sim.MaxSteps >= 0, "sim.max_steps must not be negative, got %d", c.Sim.MaxSteps)
	check(unit(c.Sim.ExplorerRequestProbability), "sim.explorer_request_probability must be in [0,1], got %v", c.Sim.ExplorerRequestProbability)
	check(c.Sim.StepDelay >= 0, "sim.step_delay must not be negative, got %s", c.Sim.StepDelay)
	check(c.Sim.ResponseTimeout > 0, "sim.response_timeout must be positive, got %s", c.Sim.ResponseTimeout)
	check(unit(c.Sim.Weather.Base), "sim.weather.base must be in [0,1], got %v", c.Sim.Weather.Base)
	check(c.Sim.Weather.Drift >= 0, "sim.weather.drift must not be negative, got %v", c.Sim.Weather.Drift)
	if _, err := resource.ParseBasic(c.Sim.Resource); err != nil {
		errs = append(errs, fmt.Errorf("sim.resource: %w", err))
	}
	if c.API.Addr != "" {
		check(c.API.RatePerSecond > 0, "api.rate_per_second must be positive, got %v", c.API.RatePerSecond)
		check(c.API.RateBurst >= 1, "api.rate_burst must be at least 1, got %d", c.API.RateBurst)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// AIConfig converts to the decision engine settings.
func (c *Config) AIConfig() ai.Config {
	return ai.Config{
		RandomMode:          c.AI.RandomMode,
		BasicThreshold:      c.AI.BasicThreshold,
		ComplexThreshold:    c.AI.ComplexThreshold,
		HalfLife:            c.AI.HalfLife,
		MinSamplingInterval: c.AI.MinSamplingInterval,
	}
}

// Weather converts to the cosmos weather settings.
func (c *Config) Weather() cosmos.WeatherConfig {
	w := c.Sim.Weather
	return cosmos.WeatherConfig{
		Base:        w.Base,
		Drift:       w.Drift,
		Amplitude:   w.Amplitude,
		Frequency:   w.Frequency,
		Octaves:     w.Octaves,
		Persistence: w.Persistence,
		Seed:        w.Seed,
	}
}

// Driver converts to the cosmos driver settings. Call Validate first.
func (c *Config) Driver() cosmos.DriverConfig {
	kind, _ := resource.ParseBasic(c.Sim.Resource)
	return cosmos.DriverConfig{
		MaxSteps:                   c.Sim.MaxSteps,
		ExplorerRequestProbability: c.Sim.ExplorerRequestProbability,
		ExplorerID:                 protocol.ExplorerID(c.Sim.ExplorerID),
		Resource:                   kind,
		StepDelay:                  c.Sim.StepDelay,
		ResponseTimeout:            c.Sim.ResponseTimeout,
	}
}
