package optimizer

import (
	"context"
	"fmt"
	"time"

	"postPilot/domain"
)

// PerformanceUpdate is one requested counter change.
type PerformanceUpdate struct {
	VariantID  string
	Impression bool
	Success    bool
}

// PerformanceUpdater applies counter changes through the store's
// SQL-level atomic increments. It holds no state of its own, so any
// number of goroutines may share one instance; per-variant linearizability
// comes from the database, not from application-level locking.
type PerformanceUpdater struct {
	store VariantStore
}

func NewPerformanceUpdater(store VariantStore) *PerformanceUpdater {
	return &PerformanceUpdater{store: store}
}

// Update applies a single change. A success implies an impression when the
// caller did not set one. Unknown IDs are a no-op.
func (u *PerformanceUpdater) Update(ctx context.Context, update PerformanceUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var impressions, successes int64
	if update.Impression || update.Success {
		impressions = 1
	}
	if update.Success {
		successes = 1
	}
	if impressions == 0 && successes == 0 {
		return nil
	}

	if err := u.store.Increment(ctx, update.VariantID, impressions, successes, time.Now()); err != nil {
		return fmt.Errorf("failed to increment variant %s: %w", update.VariantID, err)
	}
	return nil
}

// UpdateBatch groups deltas per unique variant and applies the whole
// batch in one store transaction, all-or-nothing.
func (u *PerformanceUpdater) UpdateBatch(ctx context.Context, updates []PerformanceUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(updates) == 0 {
		return nil
	}

	grouped := make(map[string]*domain.VariantDelta, len(updates))
	order := make([]string, 0, len(updates))
	for _, up := range updates {
		d, ok := grouped[up.VariantID]
		if !ok {
			d = &domain.VariantDelta{VariantID: up.VariantID}
			grouped[up.VariantID] = d
			order = append(order, up.VariantID)
		}
		if up.Impression || up.Success {
			d.ImpressionsDelta++
		}
		if up.Success {
			d.SuccessesDelta++
		}
	}

	deltas := make([]domain.VariantDelta, 0, len(order))
	for _, id := range order {
		deltas = append(deltas, *grouped[id])
	}

	if err := u.store.IncrementBatch(ctx, deltas, time.Now()); err != nil {
		return fmt.Errorf("failed to apply batch of %d deltas: %w", len(deltas), err)
	}
	return nil
}

// ApplyAggregates converts flush-cycle aggregates into counter deltas and
// applies them in one batch.
func (u *PerformanceUpdater) ApplyAggregates(ctx context.Context, aggs []domain.BatchAggregate, cfg Config) error {
	if len(aggs) == 0 {
		return nil
	}

	deltas := make([]domain.VariantDelta, 0, len(aggs))
	for _, agg := range aggs {
		successes := cfg.successesFromScore(agg.WeightedScore)
		// a batch can never award more successes than it counted
		// impressions, or counters would drift into successes > impressions
		if successes > agg.ImpressionsDelta {
			successes = agg.ImpressionsDelta
		}
		deltas = append(deltas, domain.VariantDelta{
			VariantID:        agg.VariantID,
			ImpressionsDelta: agg.ImpressionsDelta,
			SuccessesDelta:   successes,
		})
	}

	if err := u.store.IncrementBatch(ctx, deltas, time.Now()); err != nil {
		return fmt.Errorf("failed to apply %d aggregates: %w", len(deltas), err)
	}
	return nil
}
