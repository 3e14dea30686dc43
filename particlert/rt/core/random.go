package core

import (
	"math/rand"
)

// Range is an inclusive-exclusive [Min, Max) scalar range.
type Range struct {
	Min float32
	Max float32
}

func (r Range) Valid() bool { return r.Max >= r.Min }

// Sample draws uniformly from the range using rng.
func (r Range) Sample(rng *rand.Rand) float32 {
	return Lerp(r.Min, r.Max, rng.Float32())
}

func Lerp(a, b, t float32) float32 { return a + (b-a)*t }

// NewRand returns a seeded source. Seed 0 picks a random seed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = rand.Int63()
	}
	return rand.New(rand.NewSource(seed))
}
