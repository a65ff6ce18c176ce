//go:build !integration

package optimizer

import (
	"math"
	"math/rand"
	"testing"
)

func splitArms() []Arm {
	// 4 experienced (>= 10 impressions), 4 fresh
	return []Arm{
		{VariantID: "e1", Alpha: 30, Beta: 10, Impressions: 40},
		{VariantID: "e2", Alpha: 15, Beta: 15, Impressions: 30},
		{VariantID: "e3", Alpha: 10, Beta: 30, Impressions: 40},
		{VariantID: "e4", Alpha: 25, Beta: 5, Impressions: 30},
		{VariantID: "f1", Alpha: 1, Beta: 1, Impressions: 0},
		{VariantID: "f2", Alpha: 5, Beta: 7, Impressions: 2},
		{VariantID: "f3", Alpha: 1, Beta: 1, Impressions: 5},
		{VariantID: "f4", Alpha: 3, Beta: 3, Impressions: 9},
	}
}

func isFresh(id string) bool {
	return id[0] == 'f'
}

func TestExplorationRatioZeroPrefersExperienced(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	got := selectWithExploration(rng, splitArms(), 4, 10, 0, StrategySort)
	if len(got) != 4 {
		t.Fatalf("got %d picks, want 4", len(got))
	}
	for _, sa := range got {
		if isFresh(sa.variantID) {
			t.Errorf("ratio=0 picked fresh variant %s", sa.variantID)
		}
	}
}

func TestExplorationRatioOnePrefersFresh(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	got := selectWithExploration(rng, splitArms(), 4, 10, 1, StrategySort)
	if len(got) != 4 {
		t.Fatalf("got %d picks, want 4", len(got))
	}
	for _, sa := range got {
		if !isFresh(sa.variantID) {
			t.Errorf("ratio=1 picked experienced variant %s", sa.variantID)
		}
	}
}

func TestExplorationSlotSplit(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	// topK=5, ratio=0.2 -> floor(1) exploration slot, 4 exploitation
	got := selectWithExploration(rng, splitArms(), 5, 10, 0.2, StrategySort)
	if len(got) != 5 {
		t.Fatalf("got %d picks, want 5", len(got))
	}

	freshCount := 0
	for _, sa := range got {
		if isFresh(sa.variantID) {
			freshCount++
		}
	}
	if freshCount != 1 {
		t.Errorf("expected exactly 1 fresh pick, got %d", freshCount)
	}
}

func TestExplorationBackfillWhenFreshScarce(t *testing.T) {
	arms := []Arm{
		{VariantID: "e1", Alpha: 30, Beta: 10, Impressions: 40},
		{VariantID: "e2", Alpha: 15, Beta: 15, Impressions: 30},
		{VariantID: "e3", Alpha: 10, Beta: 30, Impressions: 40},
		{VariantID: "f1", Alpha: 1, Beta: 1, Impressions: 0},
	}
	rng := rand.New(rand.NewSource(5))

	// ratio=1 wants 4 fresh slots but only one fresh arm exists;
	// experienced arms backfill the rest
	got := selectWithExploration(rng, arms, 4, 10, 1, StrategySort)
	if len(got) != 4 {
		t.Fatalf("got %d picks, want 4", len(got))
	}
}

func TestExplorationNoDuplicates(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := selectWithExploration(rng, splitArms(), 8, 10, 0.5, StrategyHeap)

		seen := make(map[string]bool)
		for _, sa := range got {
			if seen[sa.variantID] {
				t.Fatalf("seed %d: duplicate %s", seed, sa.variantID)
			}
			seen[sa.variantID] = true
		}
	}
}

func TestExplorationResultBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	got := selectWithExploration(rng, splitArms(), 100, 10, 0.3, StrategySort)
	if len(got) != len(splitArms()) {
		t.Errorf("got %d picks, want all %d arms", len(got), len(splitArms()))
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.4, 0.4},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := clamp01(c.in); got != c.want {
			t.Errorf("clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
