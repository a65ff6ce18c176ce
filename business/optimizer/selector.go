package optimizer

import (
	"container/heap"
	"math/rand"
	"sort"
)

// Ranking strategies. Both share the same sampling pass; only the
// ranking data structure differs, so their output distributions are
// identical.
const (
	StrategySort = "thompson"
	StrategyHeap = "thompson_heap"
)

// Arm is one variant's effective posterior, ready for sampling.
type Arm struct {
	VariantID   string
	Alpha       float64
	Beta        float64
	Impressions int64
}

type sampledArm struct {
	variantID string
	score     float64
}

// sampleArms draws one Beta sample per arm. This is the only step that
// consumes randomness.
func sampleArms(rng *rand.Rand, arms []Arm) []sampledArm {
	out := make([]sampledArm, len(arms))
	for i, a := range arms {
		out[i] = sampledArm{
			variantID: a.VariantID,
			score:     sampleBeta(rng, a.Alpha, a.Beta),
		}
	}
	return out
}

// selectTopK ranks arms by one Thompson draw each and returns the top k,
// best first. k <= 0 or empty input yields an empty result; k >= len
// returns everything, score ordered.
func selectTopK(rng *rand.Rand, arms []Arm, k int, strategy string) []sampledArm {
	if len(arms) == 0 || k <= 0 {
		return []sampledArm{}
	}

	sampled := sampleArms(rng, arms)

	if strategy == StrategyHeap && k < len(sampled) {
		return topKHeap(sampled, k)
	}
	return topKSort(sampled, k)
}

// topKSort: full O(n log n) sort, then cut.
func topKSort(sampled []sampledArm, k int) []sampledArm {
	sort.Slice(sampled, func(i, j int) bool {
		return sampled[i].score > sampled[j].score
	})
	if k > len(sampled) {
		k = len(sampled)
	}
	return sampled[:k]
}

// topKHeap: bounded min-heap of size k, O(n log k). The heap root is the
// weakest of the current best k and is displaced by anything better.
func topKHeap(sampled []sampledArm, k int) []sampledArm {
	h := make(armMinHeap, 0, k)
	heap.Init(&h)

	for _, sa := range sampled {
		if h.Len() < k {
			heap.Push(&h, sa)
			continue
		}
		if sa.score > h[0].score {
			h[0] = sa
			heap.Fix(&h, 0)
		}
	}

	// pop ascending, fill best-first
	out := make([]sampledArm, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(sampledArm)
	}
	return out
}

type armMinHeap []sampledArm

func (h armMinHeap) Len() int            { return len(h) }
func (h armMinHeap) Less(i, j int) bool  { return h[i].score < h[j].score }
func (h armMinHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *armMinHeap) Push(x any)         { *h = append(*h, x.(sampledArm)) }
func (h *armMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
