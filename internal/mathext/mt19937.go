package mathext

import "gonum.org/v1/gonum/mathext/prng"

// DefaultSeed is substituted for a zero seed, matching gsl_rng_mt19937.
const DefaultSeed = 4357

// NewMT19937 returns a 32-bit Mersenne Twister seeded with seed. A zero seed
// is replaced by DefaultSeed so that seed 0 and seed 4357 produce the same
// stream.
func NewMT19937(seed uint32) *prng.MT19937 {
	if seed == 0 {
		seed = DefaultSeed
	}
	g := prng.NewMT19937()
	g.Seed(uint64(seed))
	return g
}

// Uniform returns the next value of g in [0, 1) with 32 bits of resolution.
func Uniform(g *prng.MT19937) float64 {
	return float64(g.Uint32()) / 4294967296.0
}

// UniformStream seeds a fresh generator and returns n uniforms in generation
// order. The generator is discarded afterwards.
func UniformStream(n int, seed uint32) []float64 {
	if n <= 0 {
		return nil
	}
	g := NewMT19937(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = Uniform(g)
	}
	return out
}
