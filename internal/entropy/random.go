// Package entropy provides uniform samples for the random decision mode.
// Production runs draw from crypto/rand; tests and reproducible simulations
// use a seeded or fixed source.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields uniform samples in [0, 1).
type Source interface {
	Float64() float64
}

type cryptoSource struct{}

// Crypto returns a Source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Float64() float64 {
	return cryptoRandFloat()
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Seeded is a deterministic Source. Safe for concurrent use, since the
// simulation driver and the planet may share one.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// Float64 returns the next sample.
func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed always returns the same sample. Used by tests.
type Fixed float64

// Float64 returns f.
func (f Fixed) Float64() float64 { return float64(f) }

// Sequence replays samples in order and then repeats the last one.
type Sequence struct {
	mu      sync.Mutex
	samples []float64
	next    int
}

// NewSequence creates a replaying source. It panics on an empty slice.
func NewSequence(samples ...float64) *Sequence {
	if len(samples) == 0 {
		panic("entropy: empty sequence")
	}
	return &Sequence{samples: samples}
}

// Float64 returns the next sample of the sequence.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.samples[s.next]
	if s.next < len(s.samples)-1 {
		s.next++
	}
	return v
}
