package optimizer

import (
	"fmt"
	"math"

	"postPilot/domain"
)

// WeightForEvent turns an engagement event into its score contribution.
// An explicit positive event weight overrides the configured table.
func (cfg Config) WeightForEvent(ev domain.EngagementEvent) (float64, error) {
	if ev.Weight > 0 {
		return ev.Weight, nil
	}

	switch ev.EventType {
	case domain.EventImpression:
		return cfg.Weights.Impression, nil
	case domain.EventLike:
		return cfg.Weights.Like, nil
	case domain.EventShare:
		return cfg.Weights.Share, nil
	case domain.EventComment:
		return cfg.Weights.Comment, nil
	case domain.EventClick:
		return cfg.Weights.Click, nil
	case domain.EventRepost:
		return cfg.Weights.Repost, nil
	case domain.EventSave:
		return cfg.Weights.Save, nil
	case domain.EventView:
		return cfg.Weights.View, nil
	default:
		return 0, fmt.Errorf("unknown event type: %s", ev.EventType)
	}
}

// successesFromScore converts an aggregate weighted score into a discrete
// success count: scores below the threshold yield none, anything at or
// above yields max(1, floor(score/threshold)).
func (cfg Config) successesFromScore(score float64) int64 {
	threshold := cfg.SuccessThreshold
	if threshold <= 0 {
		threshold = defaultSuccessThreshold
	}
	if score < threshold {
		return 0
	}

	n := int64(math.Floor(score / threshold))
	if n < 1 {
		n = 1
	}
	return n
}
