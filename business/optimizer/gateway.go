package optimizer

import (
	"context"
	"sync"
	"time"

	"postPilot/pkg/logger"
)

// Scorer is the external predictor: best effort, may be slow, may fail.
type Scorer interface {
	Predict(ctx context.Context, content string) (float64, error)
}

// PredictionGateway wraps the scorer with a per-call timeout, a shared
// cache, and bounded-concurrency batch dispatch. It never returns an
// error: a failed or timed-out prediction degrades to RateAbsent and the
// caller falls back to the uniform prior.
type PredictionGateway struct {
	scorer    Scorer
	cache     *PredictionCache
	timeout   time.Duration
	batchSize int
}

func NewPredictionGateway(scorer Scorer, cache *PredictionCache, timeout time.Duration, batchSize int) *PredictionGateway {
	if timeout <= 0 {
		timeout = defaultPredictTimeout
	}
	if batchSize <= 0 {
		batchSize = defaultPredictBatchSize
	}
	return &PredictionGateway{
		scorer:    scorer,
		cache:     cache,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// Predict returns the predicted engagement rate for content, or RateAbsent
// when no usable prediction is available. Empty content and a nil scorer
// short-circuit without any external call.
func (g *PredictionGateway) Predict(ctx context.Context, content string) float64 {
	if content == "" || g.scorer == nil {
		return RateAbsent
	}

	key := contentKey(content)
	if g.cache != nil {
		if rate, ok := g.cache.Get(ctx, key); ok {
			return rate
		}
	}

	rate := g.callScorer(ctx, content)
	if rate == RateAbsent {
		return RateAbsent
	}

	if g.cache != nil {
		g.cache.Put(ctx, key, rate)
	}
	return rate
}

// callScorer runs one prediction off-goroutine under the per-call
// timeout. A timed-out call is abandoned; its goroutine exits on its own
// through the buffered channel.
func (g *PredictionGateway) callScorer(ctx context.Context, content string) float64 {
	type result struct {
		rate float64
		err  error
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan result, 1)
	go func() {
		rate, err := g.scorer.Predict(callCtx, content)
		ch <- result{rate: rate, err: err}
	}()

	select {
	case res := <-ch:
		PredictionDuration.Observe(time.Since(start).Seconds())
		if res.err != nil {
			PredictionFailures.WithLabelValues("error").Inc()
			logger.Debug("prediction failed", "error", res.err)
			return RateAbsent
		}
		if !validRate(res.rate) {
			PredictionFailures.WithLabelValues("malformed").Inc()
			logger.Debug("prediction out of range", "rate", res.rate)
			return RateAbsent
		}
		return res.rate
	case <-callCtx.Done():
		PredictionDuration.Observe(time.Since(start).Seconds())
		PredictionFailures.WithLabelValues("timeout").Inc()
		return RateAbsent
	}
}

// PredictBatch scores many contents with at most batchSize in flight.
// Result order matches input order; each item degrades independently, so
// one failure or timeout never affects its neighbors.
func (g *PredictionGateway) PredictBatch(ctx context.Context, contents []string) []float64 {
	out := make([]float64, len(contents))
	if len(contents) == 0 {
		return out
	}

	sem := make(chan struct{}, g.batchSize)
	var wg sync.WaitGroup

	for i, content := range contents {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, content string) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = g.Predict(ctx, content)
		}(i, content)
	}

	wg.Wait()
	return out
}
