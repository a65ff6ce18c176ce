package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"postPilot/domain"
	"postPilot/pkg/logger"
)

// DebugSelect returns the per-variant score components behind one
// selection pass for inspection: effective posterior, predicted rate, and
// the actual Thompson draw. Same loading path as Select, no exploration
// split so every candidate shows up.
func (s *OptimizerService) DebugSelect(ctx context.Context, req SelectionRequest) ([]domain.DebugSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	cfg := s.loadConfig(ctx, req.PersonaID)
	topK := req.TopK
	if topK < 0 {
		return nil, fmt.Errorf("top_k must not be negative: %d", topK)
	}
	if topK == 0 {
		topK = cfg.TopK
	}
	minImpressions := req.MinImpressions
	if minImpressions <= 0 {
		minImpressions = cfg.MinImpressions
	}

	variants, err := s.store.LoadAll(ctx, req.PersonaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	tid := TraceIDFromContext(ctx)
	logger.Debug("debug selection",
		"trace_id", tid,
		"persona_id", req.PersonaID,
		"top_k", topK,
		"candidates", len(variants),
	)

	rng := acquireRand()
	defer releaseRand(rng)

	out := make([]domain.DebugSelection, 0, len(variants))
	for _, v := range variants {
		if err := v.ValidateCounters(); err != nil {
			return nil, err
		}

		rate := RateAbsent
		if s.gateway != nil && v.Impressions < minImpressions {
			rate = s.gateway.Predict(ctx, variantContent(v))
		}

		alpha, beta := blendPrior(rate, v.Impressions, v.Successes, cfg.VirtualSamples)
		out = append(out, domain.DebugSelection{
			VariantID:     v.ID,
			Impressions:   v.Impressions,
			Successes:     v.Successes,
			PredictedRate: rate,
			Alpha:         alpha,
			Beta:          beta,
			PosteriorMean: alpha / (alpha + beta),
			SampledScore:  sampleBeta(rng, alpha, beta),
			Experienced:   v.Impressions >= minImpressions,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SampledScore > out[j].SampledScore
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// PipelineStats reports the pipeline's current state for health output.
type PipelineStats struct {
	State      int32     `json:"state"`
	ObservedAt time.Time `json:"observed_at"`
}

func (s *OptimizerService) PipelineStats() PipelineStats {
	return PipelineStats{
		State:      s.pipeline.State(),
		ObservedAt: time.Now(),
	}
}
