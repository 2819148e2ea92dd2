// Package rng provides the seeded random stream a battle consumes.
//
// # Determinism
//
// A Source built from the same seed always yields the same sequence of
// values. Every probabilistic battle decision draws from a single Source
// owned by the battle session, so a seed plus a sequence of move choices
// fully determines the battle log.
package rng

import (
	"hash/fnv"
	"math/rand"
)

// Source produces uniform values in [0,1).
type Source interface {
	Next() float64
}

// Seeded is a Source backed by math/rand with an explicit seed.
type Seeded struct {
	seed int64
	r    *rand.Rand
}

// New returns a Source seeded with the given integer seed.
func New(seed int64) *Seeded {
	return &Seeded{seed: seed, r: rand.New(rand.NewSource(seed))}
}

// NewFromString returns a Source seeded from the FNV-1a hash of seed.
func NewFromString(seed string) *Seeded {
	return New(SeedFromString(seed))
}

// SeedFromString maps an arbitrary string to an integer seed.
func SeedFromString(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Next returns the next value in [0,1).
func (s *Seeded) Next() float64 {
	return s.r.Float64()
}

// Sequence replays a fixed list of values, cycling when exhausted.
// An empty sequence always returns 0. It is meant for tests and scripted
// scenarios where exact draws matter.
type Sequence struct {
	values []float64
	pos    int
	draws  int
}

// NewSequence returns a Sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Next returns the next scripted value.
func (s *Sequence) Next() float64 {
	s.draws++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return clampUnit(v)
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	return s.draws
}

// IntN maps one draw from src onto [0, n). n must be positive.
func IntN(src Source, n int) int {
	if n <= 1 {
		src.Next()
		return 0
	}
	v := int(src.Next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.9999999999
	}
	return v
}
