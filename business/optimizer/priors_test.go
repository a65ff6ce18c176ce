//go:build !integration

package optimizer

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBlendPriorFreshWithPrediction(t *testing.T) {
	// no observations, predicted 0.8, 10 virtual samples:
	// alpha = 0.8*10+1 = 9, beta = 0.2*10+1 = 3
	alpha, beta := blendPrior(0.8, 0, 0, 10)
	if !almostEqual(alpha, 9) || !almostEqual(beta, 3) {
		t.Errorf("got alpha=%v beta=%v, want 9, 3", alpha, beta)
	}
}

func TestBlendPriorNoPrediction(t *testing.T) {
	// plain Beta(successes+1, failures+1)
	alpha, beta := blendPrior(RateAbsent, 20, 5, 10)
	if !almostEqual(alpha, 6) || !almostEqual(beta, 16) {
		t.Errorf("got alpha=%v beta=%v, want 6, 16", alpha, beta)
	}
}

func TestBlendPriorBlended(t *testing.T) {
	// observed 5/10 = 0.5, predicted 0.5: blended stays 0.5 over
	// pseudo = 10+10 = 20 observations
	alpha, beta := blendPrior(0.5, 10, 5, 10)
	if !almostEqual(alpha, 11) || !almostEqual(beta, 11) {
		t.Errorf("got alpha=%v beta=%v, want 11, 11", alpha, beta)
	}
}

func TestBlendPriorBlendedAsymmetric(t *testing.T) {
	// observed 9/10 = 0.9, predicted 0.4, V=10:
	// blended = (10*0.4 + 10*0.9) / 20 = 0.65
	// alpha = 0.65*20+1 = 14, beta = 0.35*20+1 = 8
	alpha, beta := blendPrior(0.4, 10, 9, 10)
	if !almostEqual(alpha, 14) || !almostEqual(beta, 8) {
		t.Errorf("got alpha=%v beta=%v, want 14, 8", alpha, beta)
	}
}

func TestBlendPriorRejectsBadRates(t *testing.T) {
	for _, rate := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.5, 1.5} {
		alpha, beta := blendPrior(rate, 4, 2, 10)
		if !almostEqual(alpha, 3) || !almostEqual(beta, 3) {
			t.Errorf("rate=%v: got alpha=%v beta=%v, want uniform-counter fallback 3, 3",
				rate, alpha, beta)
		}
	}
}

func TestBlendPriorDefaultVirtualSamples(t *testing.T) {
	// non-positive virtualSamples falls back to the default weight
	alpha, beta := blendPrior(0.8, 0, 0, 0)
	wantAlpha := 0.8*defaultVirtualSamples + 1
	wantBeta := 0.2*defaultVirtualSamples + 1
	if !almostEqual(alpha, wantAlpha) || !almostEqual(beta, wantBeta) {
		t.Errorf("got alpha=%v beta=%v, want %v, %v", alpha, beta, wantAlpha, wantBeta)
	}
}

func TestValidRate(t *testing.T) {
	valid := []float64{0, 0.5, 1}
	for _, r := range valid {
		if !validRate(r) {
			t.Errorf("validRate(%v) = false, want true", r)
		}
	}

	invalid := []float64{-0.01, 1.01, math.NaN(), math.Inf(1), math.Inf(-1), RateAbsent}
	for _, r := range invalid {
		if validRate(r) {
			t.Errorf("validRate(%v) = true, want false", r)
		}
	}
}
