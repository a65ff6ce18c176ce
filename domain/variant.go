package domain

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Variant is one candidate content configuration under test.
// Counters are mutated only through the performance updater, never by
// handlers or the selection path.
type Variant struct {
	ID          string            `gorm:"column:id;primaryKey" json:"id"`
	PersonaID   string            `gorm:"column:persona_id;index" json:"persona_id"`
	Dimensions  datatypes.JSONMap `gorm:"column:dimensions;type:jsonb" json:"dimensions"`
	Impressions int64             `gorm:"column:impressions;not null;default:0" json:"impressions"`
	Successes   int64             `gorm:"column:successes;not null;default:0" json:"successes"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastUsed    time.Time         `gorm:"column:last_used" json:"last_used"`
}

func (Variant) TableName() string {
	return "content_variants"
}

// ValidateCounters rejects records whose counters cannot form a valid
// Beta posterior. Called at the store boundary on load and by the
// optimizer before ranking.
func (v Variant) ValidateCounters() error {
	if v.Impressions < 0 || v.Successes < 0 {
		return fmt.Errorf("%w: variant %s has negative counters (impressions=%d successes=%d)",
			ErrMalformedVariant, v.ID, v.Impressions, v.Successes)
	}
	if v.Successes > v.Impressions {
		return fmt.Errorf("%w: variant %s has successes=%d > impressions=%d",
			ErrMalformedVariant, v.ID, v.Successes, v.Impressions)
	}
	return nil
}

// SuccessRate is the observed rate; 0 for a fresh variant.
func (v Variant) SuccessRate() float64 {
	if v.Impressions == 0 {
		return 0
	}
	return float64(v.Successes) / float64(v.Impressions)
}

// RankedVariant is one entry of a selection result.
type RankedVariant struct {
	VariantID string  `json:"variant_id"`
	Score     float64 `json:"score"`
}

// VariantDelta is one grouped counter update, applied atomically per ID.
type VariantDelta struct {
	VariantID        string
	ImpressionsDelta int64
	SuccessesDelta   int64
}
