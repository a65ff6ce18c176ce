package domain

// OptimizerConfig is the persisted per-persona override of the engine
// defaults. A missing row means the in-process defaults apply.
type OptimizerConfig struct {
	PersonaID string `json:"persona_id" gorm:"column:persona_id;primaryKey"`

	TopK             int     `json:"top_k" gorm:"column:top_k"`
	MinImpressions   int64   `json:"min_impressions" gorm:"column:min_impressions"`
	ExplorationRatio float64 `json:"exploration_ratio" gorm:"column:exploration_ratio"`

	VirtualSamples   float64 `json:"virtual_samples" gorm:"column:virtual_samples"`
	SuccessThreshold float64 `json:"success_threshold" gorm:"column:success_threshold"`

	// per-event engagement weights
	WeightImpression float64 `json:"weight_impression" gorm:"column:weight_impression"`
	WeightLike       float64 `json:"weight_like" gorm:"column:weight_like"`
	WeightShare      float64 `json:"weight_share" gorm:"column:weight_share"`
	WeightComment    float64 `json:"weight_comment" gorm:"column:weight_comment"`
	WeightClick      float64 `json:"weight_click" gorm:"column:weight_click"`
	WeightRepost     float64 `json:"weight_repost" gorm:"column:weight_repost"`
	WeightSave       float64 `json:"weight_save" gorm:"column:weight_save"`
	WeightView       float64 `json:"weight_view" gorm:"column:weight_view"`

	UpdatedAt int64 `json:"-" gorm:"column:updated_at;autoUpdateTime"`
}

func (OptimizerConfig) TableName() string {
	return "optimizer_configs"
}
