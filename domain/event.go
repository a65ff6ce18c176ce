package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Engagement event types accepted by the feedback endpoint.
const (
	EventImpression = "impression"
	EventLike       = "like"
	EventShare      = "share"
	EventComment    = "comment"
	EventClick      = "click"
	EventRepost     = "repost"
	EventSave       = "save"
	EventView       = "view"
)

// EngagementEvent is a single engagement signal produced by a caller and
// consumed by the feedback pipeline. Rows are kept for offline analysis;
// the aggregate counters on the variant are the online source of truth.
type EngagementEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VariantID string    `gorm:"column:variant_id;not null;index" json:"variant_id"`
	PersonaID string    `gorm:"column:persona_id" json:"persona_id"`
	EventType string    `gorm:"column:event_type;not null" json:"event_type"`
	Weight    float64   `gorm:"-" json:"weight"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (EngagementEvent) TableName() string {
	return "engagement_events"
}

// BatchAggregate is the per-variant rollup of one flush cycle.
type BatchAggregate struct {
	VariantID        string
	ImpressionsDelta int64
	WeightedScore    float64
	EventCount       int
}
