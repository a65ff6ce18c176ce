//go:build !integration

package optimizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"postPilot/domain"
)

func pipelineConfig(queueCap, batchSize int, batchTimeout time.Duration) Config {
	cfg := DefaultConfig()
	cfg.QueueCapacity = queueCap
	cfg.BatchSize = batchSize
	cfg.BatchTimeout = batchTimeout
	return cfg
}

func waitForCounters(t *testing.T, store *memStore, id string, wantImp, wantSucc int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		imp, succ := store.counters(id)
		if imp == wantImp && succ == wantSucc {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	imp, succ := store.counters(id)
	t.Fatalf("%s: got impressions=%d successes=%d, want %d, %d", id, imp, succ, wantImp, wantSucc)
}

// Three likes are one batch: weighted score 3.0 crosses the 2.0 threshold
// for exactly one success, and every event still counts an impression.
func TestPipelineThreeLikes(t *testing.T) {
	store := newMemStore("v1")
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(16, 3, time.Minute))
	p.Start(context.Background())
	defer p.Stop()

	for i := 0; i < 3; i++ {
		if err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventLike}); err != nil {
			t.Fatal(err)
		}
	}

	waitForCounters(t, store, "v1", 3, 1)
}

func TestPipelineFlushesOnTimeout(t *testing.T) {
	store := newMemStore("v1")
	// batch size far above what we enqueue; only the timer can flush
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(16, 100, 30*time.Millisecond))
	p.Start(context.Background())
	defer p.Stop()

	if err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventShare}); err != nil {
		t.Fatal(err)
	}

	// one share: weight 3.0 -> 1 success, 1 impression
	waitForCounters(t, store, "v1", 1, 1)
}

func TestPipelineStopDrains(t *testing.T) {
	store := newMemStore("v1")
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(64, 1000, time.Minute))
	p.Start(context.Background())

	for i := 0; i < 10; i++ {
		if err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventImpression}); err != nil {
			t.Fatal(err)
		}
	}

	p.Stop()

	// 10 impressions at weight 0.1 each: score 1.0 < threshold, no success
	imp, succ := store.counters("v1")
	if imp != 10 || succ != 0 {
		t.Errorf("after drain: got impressions=%d successes=%d, want 10, 0", imp, succ)
	}
	if p.State() != StateStopped {
		t.Errorf("state = %d, want StateStopped", p.State())
	}
}

func TestPipelineEnqueueAfterStop(t *testing.T) {
	store := newMemStore("v1")
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(16, 10, time.Minute))
	p.Start(context.Background())
	p.Stop()

	err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventLike})
	if !errors.Is(err, domain.ErrPipelineStopped) {
		t.Errorf("got %v, want ErrPipelineStopped", err)
	}
}

func TestPipelineQueueFull(t *testing.T) {
	store := newMemStore("v1")
	// consumer never started, so the queue fills
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(2, 10, time.Minute))

	for i := 0; i < 2; i++ {
		if err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventLike}); err != nil {
			t.Fatal(err)
		}
	}

	err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventLike})
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Errorf("got %v, want ErrQueueFull", err)
	}
}

// Every enqueue that returns nil must be flushed even when producers race
// the stop sequence: accepted events and stored impressions have to agree
// exactly, with nothing parked in the queue.
func TestPipelineStopConcurrentEnqueueAccounting(t *testing.T) {
	store := newMemStore("v1")
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(256, 1000, time.Minute))
	p.Start(context.Background())

	const producers = 50
	var accepted atomic.Int64
	var wg sync.WaitGroup

	start := make(chan struct{})
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventImpression})
			if err == nil {
				accepted.Add(1)
			} else if !errors.Is(err, domain.ErrPipelineStopped) && !errors.Is(err, domain.ErrQueueFull) {
				t.Errorf("unexpected enqueue error: %v", err)
			}
		}()
	}

	close(start)
	p.Stop()
	wg.Wait()

	imp, _ := store.counters("v1")
	if imp != accepted.Load() {
		t.Errorf("accepted %d events but stored %d impressions", accepted.Load(), imp)
	}
}

func TestPipelineContextCancelDrains(t *testing.T) {
	store := newMemStore("v1")
	p := NewFeedbackPipeline(NewPerformanceUpdater(store), pipelineConfig(16, 1000, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	for i := 0; i < 4; i++ {
		if err := p.Enqueue(domain.EngagementEvent{VariantID: "v1", EventType: domain.EventComment}); err != nil {
			t.Fatal(err)
		}
	}

	cancel()

	// 4 comments: score 10.0 -> floor(10/2) = 5, capped at the 4
	// impressions the batch contributed
	waitForCounters(t, store, "v1", 4, 4)
}

func TestAggregateEventsGroupsPerVariant(t *testing.T) {
	cfg := DefaultConfig()
	batch := []domain.EngagementEvent{
		{VariantID: "a", EventType: domain.EventLike},
		{VariantID: "b", EventType: domain.EventClick},
		{VariantID: "a", EventType: domain.EventShare},
		{VariantID: "a", EventType: "unknown"},
	}

	aggs := aggregateEvents(batch, cfg)
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates, want 2", len(aggs))
	}

	byID := make(map[string]domain.BatchAggregate, len(aggs))
	for _, a := range aggs {
		byID[a.VariantID] = a
	}

	a := byID["a"]
	if a.ImpressionsDelta != 2 || a.EventCount != 2 {
		t.Errorf("a: got impressions=%d events=%d, want 2, 2 (unknown type skipped)",
			a.ImpressionsDelta, a.EventCount)
	}
	if !almostEqual(a.WeightedScore, 4.0) {
		t.Errorf("a: weighted score = %v, want 4.0", a.WeightedScore)
	}

	b := byID["b"]
	if b.ImpressionsDelta != 1 || !almostEqual(b.WeightedScore, 1.5) {
		t.Errorf("b: got impressions=%d score=%v, want 1, 1.5", b.ImpressionsDelta, b.WeightedScore)
	}
}

func TestAggregateEventsExplicitWeightOverrides(t *testing.T) {
	cfg := DefaultConfig()
	batch := []domain.EngagementEvent{
		{VariantID: "a", EventType: domain.EventLike, Weight: 9.5},
	}

	aggs := aggregateEvents(batch, cfg)
	if len(aggs) != 1 || !almostEqual(aggs[0].WeightedScore, 9.5) {
		t.Fatalf("explicit weight not honored: %+v", aggs)
	}
}
