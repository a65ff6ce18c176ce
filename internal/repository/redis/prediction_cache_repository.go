package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"postPilot/business/optimizer"

	"github.com/redis/go-redis/v9"
)

// PredictionCacheRepository is the shared second cache level behind the
// in-process LRU. Entries carry a TTL so stale predictions age out on
// their own.
type PredictionCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ optimizer.SecondLevelCache = (*PredictionCacheRepository)(nil)

func NewPredictionCacheRepository(client *redis.Client, ttl time.Duration) *PredictionCacheRepository {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &PredictionCacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *PredictionCacheRepository) GetRate(ctx context.Context, key string) (float64, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get prediction from redis: %w", err)
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed cached prediction %q: %w", val, err)
	}

	return rate, true, nil
}

func (r *PredictionCacheRepository) SetRate(ctx context.Context, key string, rate float64) error {
	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := r.client.Set(ctx, key, val, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache prediction: %w", err)
	}
	return nil
}
