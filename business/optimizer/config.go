package optimizer

import (
	"context"
	"time"

	"postPilot/domain"
)

type Config struct {
	TopK             int
	MinImpressions   int64
	ExplorationRatio float64

	// how many pseudo-observations an external prediction is worth
	VirtualSamples float64

	// weighted engagement score at which a batch counts as success
	SuccessThreshold float64

	// per-event engagement weights
	Weights EventWeights

	// prediction gateway
	PredictTimeout   time.Duration
	PredictBatchSize int
	CacheCapacity    int
	CacheTTL         time.Duration

	// feedback pipeline
	QueueCapacity int
	BatchSize     int
	BatchTimeout  time.Duration
}

type EventWeights struct {
	Impression float64
	Like       float64
	Share      float64
	Comment    float64
	Click      float64
	Repost     float64
	Save       float64
	View       float64
}

const (
	defaultTopK             = 5
	defaultMinImpressions   = 10
	defaultExplorationRatio = 0.2
	defaultVirtualSamples   = 10.0
	defaultSuccessThreshold = 2.0
	defaultPredictTimeout   = 500 * time.Millisecond
	defaultPredictBatchSize = 8
	defaultCacheCapacity    = 500
	defaultCacheTTL         = 6 * time.Hour
	defaultQueueCapacity    = 4096
	defaultBatchSize        = 100
	defaultBatchTimeout     = 5 * time.Second

	defaultWeightImpression = 0.1
	defaultWeightLike       = 1.0
	defaultWeightShare      = 3.0
	defaultWeightComment    = 2.5
	defaultWeightClick      = 1.5
	defaultWeightRepost     = 4.0
	defaultWeightSave       = 2.0
	defaultWeightView       = 0.1
)

func DefaultConfig() Config {
	return Config{
		TopK:             defaultTopK,
		MinImpressions:   defaultMinImpressions,
		ExplorationRatio: defaultExplorationRatio,
		VirtualSamples:   defaultVirtualSamples,
		SuccessThreshold: defaultSuccessThreshold,

		PredictTimeout:   defaultPredictTimeout,
		PredictBatchSize: defaultPredictBatchSize,
		CacheCapacity:    defaultCacheCapacity,
		CacheTTL:         defaultCacheTTL,

		QueueCapacity: defaultQueueCapacity,
		BatchSize:     defaultBatchSize,
		BatchTimeout:  defaultBatchTimeout,

		Weights: EventWeights{
			Impression: defaultWeightImpression,
			Like:       defaultWeightLike,
			Share:      defaultWeightShare,
			Comment:    defaultWeightComment,
			Click:      defaultWeightClick,
			Repost:     defaultWeightRepost,
			Save:       defaultWeightSave,
			View:       defaultWeightView,
		},
	}
}

// read per-persona optimizer config from DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, personaID string) (domain.OptimizerConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.OptimizerConfig) error
}
