package optimizer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"postPilot/domain"
	"postPilot/pkg/logger"
)

// Pipeline states. Transitions: Idle -> Draining -> Flushing -> Idle,
// with Stopped terminal from Idle or Draining.
const (
	StateIdle int32 = iota
	StateDraining
	StateFlushing
	StateStopped
)

// FeedbackPipeline batches engagement events into periodic aggregate
// counter updates. Producers enqueue without blocking; one background
// consumer flushes whenever batchSize events have accumulated or
// batchTimeout has elapsed, whichever comes first.
type FeedbackPipeline struct {
	updater *PerformanceUpdater
	cfg     Config

	queue chan domain.EngagementEvent
	state atomic.Int32
	stop  chan struct{}
	done  chan struct{}

	// serializes producers against the shutdown drain: a send that won
	// the state check always lands before the post-stop drain runs
	mu sync.RWMutex

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewFeedbackPipeline(updater *PerformanceUpdater, cfg Config) *FeedbackPipeline {
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &FeedbackPipeline{
		updater: updater,
		cfg:     cfg,
		queue:   make(chan domain.EngagementEvent, capacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Enqueue hands an event to the pipeline. It never blocks: a full queue
// returns ErrQueueFull so the caller can shed load explicitly instead of
// growing memory without bound.
func (p *FeedbackPipeline) Enqueue(event domain.EngagementEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state.Load() == StateStopped {
		return domain.ErrPipelineStopped
	}

	select {
	case p.queue <- event:
		FeedbackQueueDepth.Set(float64(len(p.queue)))
		FeedbackEventsTotal.WithLabelValues(event.EventType).Inc()
		return nil
	default:
		FeedbackRejectedTotal.Inc()
		return domain.ErrQueueFull
	}
}

// Start launches the background consumer. Safe to call once.
func (p *FeedbackPipeline) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		go p.run(ctx)
	})
}

// Stop signals shutdown and waits for the consumer to finish. Any
// in-flight flush completes, and whatever is still queued gets one final
// flush; nothing is dropped silently.
func (p *FeedbackPipeline) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

// State reports the current pipeline state.
func (p *FeedbackPipeline) State() int32 {
	return p.state.Load()
}

func (p *FeedbackPipeline) run(ctx context.Context) {
	defer close(p.done)

	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	batchTimeout := p.cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}

	batch := make([]domain.EngagementEvent, 0, batchSize)
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			p.state.Store(StateIdle)
			return
		}
		p.state.Store(StateFlushing)
		p.flushBatch(ctx, batch)
		batch = batch[:0]
		p.state.Store(StateIdle)
	}

	for {
		select {
		case ev := <-p.queue:
			p.state.Store(StateDraining)
			batch = append(batch, ev)
			FeedbackQueueDepth.Set(float64(len(p.queue)))
			if len(batch) >= batchSize {
				flush()
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)

		case <-p.stop:
			p.drainAndExit(ctx, batch)
			return

		case <-ctx.Done():
			p.drainAndExit(ctx, batch)
			return
		}
	}
}

// drainAndExit flushes the accumulated batch plus everything still queued
// before marking the pipeline stopped. If the final flush itself fails,
// the loss is reported with counts rather than swallowed.
func (p *FeedbackPipeline) drainAndExit(ctx context.Context, batch []domain.EngagementEvent) {
	batch = p.drainQueue(batch)

	// Cut producers off before the last drain. Taking the write lock
	// waits out every Enqueue that already passed its state check, so
	// their sends are in the queue by the time we drain again; anyone
	// arriving later sees StateStopped and gets an error instead of a
	// silently parked event.
	p.mu.Lock()
	p.state.Store(StateStopped)
	p.mu.Unlock()
	batch = p.drainQueue(batch)

	if len(batch) > 0 {
		p.flushBatch(ctx, batch)
	}
	FeedbackQueueDepth.Set(0)
	logger.Info("feedback pipeline stopped", "final_batch", len(batch))
}

func (p *FeedbackPipeline) drainQueue(batch []domain.EngagementEvent) []domain.EngagementEvent {
	for {
		select {
		case ev := <-p.queue:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

// flushBatch groups one batch by variant, applies the engagement weight
// table, and commits the aggregates through the updater.
func (p *FeedbackPipeline) flushBatch(ctx context.Context, batch []domain.EngagementEvent) {
	aggs := aggregateEvents(batch, p.cfg)
	if len(aggs) == 0 {
		return
	}

	// shutdown may have cancelled the request context; the final flush
	// still has to land
	flushCtx := ctx
	if flushCtx.Err() != nil {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	if err := p.updater.ApplyAggregates(flushCtx, aggs, p.cfg); err != nil {
		logger.Error("feedback flush failed, events dropped",
			"variants", len(aggs),
			"events", len(batch),
			"error", err,
		)
		return
	}

	FeedbackFlushesTotal.Inc()
	logger.Debug("feedback flush complete", "variants", len(aggs), "events", len(batch))
}

// aggregateEvents rolls a batch up per variant: every event counts one
// impression, and the weighted score feeds the success conversion.
// Events with unknown types are skipped with a log line.
func aggregateEvents(batch []domain.EngagementEvent, cfg Config) []domain.BatchAggregate {
	grouped := make(map[string]*domain.BatchAggregate)
	order := make([]string, 0, len(batch))

	for _, ev := range batch {
		weight, err := cfg.WeightForEvent(ev)
		if err != nil {
			logger.Warn("skipping event with unknown type",
				"variant_id", ev.VariantID,
				"event_type", ev.EventType,
			)
			continue
		}

		agg, ok := grouped[ev.VariantID]
		if !ok {
			agg = &domain.BatchAggregate{VariantID: ev.VariantID}
			grouped[ev.VariantID] = agg
			order = append(order, ev.VariantID)
		}
		agg.ImpressionsDelta++
		agg.WeightedScore += weight
		agg.EventCount++
	}

	out := make([]domain.BatchAggregate, 0, len(order))
	for _, id := range order {
		out = append(out, *grouped[id])
	}
	return out
}
