package optimizer

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// sampleBeta draws once from Beta(alpha, beta) using the gamma-ratio
// identity: Beta(a, b) = Gamma(a) / (Gamma(a) + Gamma(b)).
func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	if alpha <= 0 || beta <= 0 {
		return 0.5 // fallback to uniform
	}

	x := sampleGamma(rng, alpha, 1.0)
	y := sampleGamma(rng, beta, 1.0)

	if x+y == 0 {
		return 0.5
	}

	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, scale) using the Marsaglia-Tsang
// squeeze method for shape >= 1, with the boost transform below 1.
func sampleGamma(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		// Gamma(a) = Gamma(a+1) * U^(1/a)
		return sampleGamma(rng, shape+1, scale) * math.Pow(rng.Float64(), 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}

		v = v * v * v
		u := rng.Float64()
		x2 := x * x

		if u < 1.0-0.0331*x2*x2 {
			return scale * d * v
		}

		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return scale * d * v
		}
	}
}

// rngSeed feeds the per-call generator pool. Mixing a counter into the
// clock keeps two pool refills in the same nanosecond from colliding.
var rngSeq atomic.Int64

func newSeededRand() *rand.Rand {
	seed := time.Now().UnixNano() ^ (rngSeq.Add(1) << 21)
	return rand.New(rand.NewSource(seed))
}

// rngPool hands each selection call its own generator. *rand.Rand is not
// safe for concurrent use, so generators are never shared across calls.
var rngPool = sync.Pool{
	New: func() any { return newSeededRand() },
}

func acquireRand() *rand.Rand {
	return rngPool.Get().(*rand.Rand)
}

func releaseRand(rng *rand.Rand) {
	rngPool.Put(rng)
}
