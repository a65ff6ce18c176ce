package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"postPilot/domain"
	"postPilot/pkg/logger"
)

// ---- Repository interfaces ----

// VariantStore is the persistence boundary for variant records. Counter
// writes must be SQL-level atomic increments, never read-modify-write.
type VariantStore interface {
	LoadAll(ctx context.Context, personaID string) ([]domain.Variant, error)
	Get(ctx context.Context, id string) (*domain.Variant, error)
	Increment(ctx context.Context, id string, impressionsDelta, successesDelta int64, now time.Time) error
	IncrementBatch(ctx context.Context, deltas []domain.VariantDelta, now time.Time) error
	Insert(ctx context.Context, variant domain.Variant) (domain.Variant, error)
	Count(ctx context.Context) (int64, error)
}

// EventRepository keeps the raw engagement log for offline analysis.
type EventRepository interface {
	SaveEvent(ctx context.Context, event domain.EngagementEvent) error
}

// SelectionRequest is the caller-facing selection input. TopK zero and a
// negative ExplorationRatio fall back to the persona config; an explicit
// ratio of zero disables exploration. Negative TopK is an error.
type SelectionRequest struct {
	PersonaID        string
	TopK             int
	MinImpressions   int64
	ExplorationRatio float64
	Algorithm        string
}

// ---- Usecase / Service ----

type OptimizerService struct {
	store      VariantStore
	eventRepo  EventRepository
	cfgRepo    ConfigRepository
	filter     VariantFilter
	gateway    *PredictionGateway
	pipeline   *FeedbackPipeline
	defaultCfg Config
}

func NewOptimizerService(
	store VariantStore,
	eventRepo EventRepository,
	cfgRepo ConfigRepository,
	filter VariantFilter,
	gateway *PredictionGateway,
	pipeline *FeedbackPipeline,
	defaultCfg Config,
) *OptimizerService {
	return &OptimizerService{
		store:      store,
		eventRepo:  eventRepo,
		cfgRepo:    cfgRepo,
		filter:     filter,
		gateway:    gateway,
		pipeline:   pipeline,
		defaultCfg: defaultCfg,
	}
}

//  Selection / serving

// Select ranks the persona's variants by Thompson sampling over blended
// Beta posteriors and returns the top IDs, exploration slots included.
func (s *OptimizerService) Select(ctx context.Context, req SelectionRequest) ([]domain.RankedVariant, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	start := time.Now()
	defer func() {
		SelectionDuration.Observe(time.Since(start).Seconds())
	}()

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
	ratio := req.ExplorationRatio
	if ratio < 0 {
		ratio = cfg.ExplorationRatio
	}
	strategy := req.Algorithm
	if strategy == "" {
		strategy = StrategySort
	}

	arms, err := s.loadArms(ctx, req.PersonaID, minImpressions, cfg)
	if err != nil {
		return nil, err
	}
	if len(arms) == 0 {
		return []domain.RankedVariant{}, nil
	}

	rng := acquireRand()
	picked := selectWithExploration(rng, arms, topK, minImpressions, ratio, strategy)
	releaseRand(rng)

	tid := TraceIDFromContext(ctx)
	logger.Debug("variant selection",
		"trace_id", tid,
		"persona_id", req.PersonaID,
		"top_k", topK,
		"algorithm", strategy,
		"candidates", len(arms),
		"picked", len(picked),
	)

	out := make([]domain.RankedVariant, 0, len(picked))
	for _, sa := range picked {
		out = append(out, domain.RankedVariant{
			VariantID: sa.variantID,
			Score:     sa.score,
		})
	}
	return out, nil
}

// loadArms loads and validates the persona's variants, scores the cold
// ones through the prediction gateway, and blends everything into
// effective posteriors. A single malformed record fails the whole load.
func (s *OptimizerService) loadArms(ctx context.Context, personaID string, minImpressions int64, cfg Config) ([]Arm, error) {
	variants, err := s.store.LoadAll(ctx, personaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	ActiveVariants.Set(float64(len(variants)))

	eligible := make([]domain.Variant, 0, len(variants))
	for _, v := range variants {
		if err := v.ValidateCounters(); err != nil {
			return nil, err
		}
		if s.filter != nil {
			ok, err := s.filter.Allowed(ctx, personaID, v.ID)
			if err != nil || !ok {
				continue
			}
		}
		eligible = append(eligible, v)
	}

	// predict only for under-observed variants; experienced ones carry
	// enough real data that the external prior would barely move them
	coldIdx := make([]int, 0, len(eligible))
	coldContents := make([]string, 0, len(eligible))
	for i, v := range eligible {
		if v.Impressions < minImpressions {
			coldIdx = append(coldIdx, i)
			coldContents = append(coldContents, variantContent(v))
		}
	}

	rates := make(map[int]float64, len(coldIdx))
	if s.gateway != nil && len(coldIdx) > 0 {
		predicted := s.gateway.PredictBatch(ctx, coldContents)
		for j, idx := range coldIdx {
			rates[idx] = predicted[j]
		}
	}

	arms := make([]Arm, 0, len(eligible))
	for i, v := range eligible {
		rate, ok := rates[i]
		if !ok {
			rate = RateAbsent
		}
		alpha, beta := blendPrior(rate, v.Impressions, v.Successes, cfg.VirtualSamples)
		arms = append(arms, Arm{
			VariantID:   v.ID,
			Alpha:       alpha,
			Beta:        beta,
			Impressions: v.Impressions,
		})
	}
	return arms, nil
}

// variantContent canonicalizes a variant's dimensions for scoring and
// cache keying: sorted key=value pairs, pipe separated.
func variantContent(v domain.Variant) string {
	if len(v.Dimensions) == 0 {
		return ""
	}

	keys := make([]string, 0, len(v.Dimensions))
	for k := range v.Dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v.Dimensions[k]))
	}
	return strings.Join(parts, "|")
}

//  Feedback / learning

// Record persists the raw event and hands it to the feedback pipeline.
// A full queue surfaces ErrQueueFull so callers can back off.
func (s *OptimizerService) Record(ctx context.Context, event domain.EngagementEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if event.VariantID == "" {
		return fmt.Errorf("variant_id is required")
	}
	if _, err := s.defaultCfg.WeightForEvent(event); err != nil {
		return err
	}

	if s.eventRepo != nil {
		if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to save engagement event: %w", err)
		}
	}

	if err := s.pipeline.Enqueue(event); err != nil {
		return err
	}

	tid := TraceIDFromContext(ctx)
	logger.Debug("engagement recorded",
		"trace_id", tid,
		"variant_id", event.VariantID,
		"persona_id", event.PersonaID,
		"event_type", event.EventType,
	)
	return nil
}

// CreateVariant registers a new experiment arm.
func (s *OptimizerService) CreateVariant(ctx context.Context, variant domain.Variant) (domain.Variant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Variant{}, fmt.Errorf("context error: %w", err)
	}

	created, err := s.store.Insert(ctx, variant)
	if err != nil {
		return domain.Variant{}, fmt.Errorf("failed to insert variant: %w", err)
	}
	return created, nil
}
