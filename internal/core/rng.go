package core

import (
	"math/rand"
	"time"
)

// RNG is the randomness seam for engines. *rand.Rand satisfies it.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

// NewRNG returns a seeded generator. A zero seed is replaced by the clock.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Uniform returns a value in [min, max).
func Uniform(r RNG, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
