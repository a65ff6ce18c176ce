package optimizer

import "math"

// RateAbsent marks a missing or rejected external prediction.
const RateAbsent = -1.0

// validRate reports whether an external prediction is usable. NaN,
// infinities, and anything outside [0, 1] are treated as absent so they
// can never reach the sampler.
func validRate(rate float64) bool {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return false
	}
	return rate >= 0 && rate <= 1
}

// blendPrior combines an optional external predicted rate with observed
// counters into effective Beta parameters.
//
// No observations + prediction: the prediction alone is worth
// virtualSamples pseudo-observations. Observations + prediction: the
// prediction is blended against the observed rate, weighted by
// virtualSamples vs real impressions. No usable prediction: plain
// Beta(successes+1, failures+1).
func blendPrior(rate float64, impressions, successes int64, virtualSamples float64) (alpha, beta float64) {
	v := virtualSamples
	if v <= 0 {
		v = defaultVirtualSamples
	}

	if !validRate(rate) {
		return float64(successes) + 1, float64(impressions-successes) + 1
	}

	if impressions == 0 {
		return rate*v + 1, (1-rate)*v + 1
	}

	observed := float64(successes) / float64(impressions)
	n := float64(impressions)
	blended := (v*rate + n*observed) / (v + n)

	pseudo := v + n
	return blended*pseudo + 1, (1-blended)*pseudo + 1
}
