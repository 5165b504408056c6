// Package rng provides the seeded pseudo-random sequence every generation step draws from.
//
// The sequence is a pure function of (seed, call count). Seeds are folded with 32-bit
// FNV-1a over UTF-16 code units and advanced with a 32-bit linear congruential step, so
// a seed string reproduces the same world in any implementation of the same recurrence.
package rng

import (
	"math"
	"unicode/utf16"
)

const (
	fnvOffset uint32 = 0x811c9dc5
	fnvPrime  uint32 = 0x01000193

	lcgMul uint32 = 1664525
	lcgInc uint32 = 1013904223

	modulus = 4294967296.0 // 2^32
)

// Generator is a deterministic pseudo-random source. Not safe for concurrent use.
type Generator struct {
	state uint32
	calls int
}

// New creates a generator whose sequence is fully determined by seed.
func New(seed string) *Generator {
	return &Generator{state: Hash(seed)}
}

// Hash folds a seed string into its initial 32-bit state.
func Hash(seed string) uint32 {
	h := fnvOffset
	for _, unit := range utf16.Encode([]rune(seed)) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}

// Next advances the sequence and returns a value in [0, 1).
func (g *Generator) Next() float64 {
	g.state = g.state*lcgMul + lcgInc
	g.calls++
	return float64(g.state) / modulus
}

// Range returns a value in [min, max).
func (g *Generator) Range(min, max float64) float64 {
	return min + g.Next()*(max-min)
}

// Intn returns an integer in [0, n). Returns 0 without drawing when n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(g.Next() * float64(n)))
}

// Calls returns how many values have been drawn since construction.
func (g *Generator) Calls() int {
	return g.calls
}

// Pick returns a uniformly chosen element of items.
// An empty slice yields the zero value without advancing the sequence.
func Pick[T any](g *Generator, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[g.Intn(len(items))]
}
