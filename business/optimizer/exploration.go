package optimizer

import (
	"math"
	"math/rand"
)

// selectWithExploration splits topK into exploration slots (under-observed
// arms) and exploitation slots (arms with at least minImpressions), ranks
// each partition independently, and backfills undersized partitions from
// the remaining pool. The result has no duplicates and length
// min(topK, len(arms)).
func selectWithExploration(
	rng *rand.Rand,
	arms []Arm,
	topK int,
	minImpressions int64,
	explorationRatio float64,
	strategy string,
) []sampledArm {

	if len(arms) == 0 || topK <= 0 {
		return []sampledArm{}
	}

	ratio := clamp01(explorationRatio)
	explorationSlots := int(math.Floor(float64(topK) * ratio))
	exploitationSlots := topK - explorationSlots

	experienced := make([]Arm, 0, len(arms))
	fresh := make([]Arm, 0, len(arms))
	for _, a := range arms {
		if a.Impressions >= minImpressions {
			experienced = append(experienced, a)
		} else {
			fresh = append(fresh, a)
		}
	}

	picked := make([]sampledArm, 0, topK)
	seen := make(map[string]struct{}, topK)

	take := func(in []sampledArm, n int) {
		for _, sa := range in {
			if n <= 0 {
				return
			}
			if _, dup := seen[sa.variantID]; dup {
				continue
			}
			seen[sa.variantID] = struct{}{}
			picked = append(picked, sa)
			n--
		}
	}

	// exploitation first: rank the experienced pool for its slots,
	// requesting the full partition so backfill can reuse the ranking
	exploited := selectTopK(rng, experienced, len(experienced), strategy)
	take(exploited, exploitationSlots)

	explored := selectTopK(rng, fresh, len(fresh), strategy)
	take(explored, explorationSlots)

	// backfill: either partition may be undersized; fill remaining slots
	// from the other ranking without duplicates
	if len(picked) < topK {
		take(exploited, topK-len(picked))
	}
	if len(picked) < topK {
		take(explored, topK-len(picked))
	}

	return picked
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
