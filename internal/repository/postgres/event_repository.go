package postgres

import (
	"context"
	"fmt"

	"postPilot/business/optimizer"
	"postPilot/domain"

	"gorm.io/gorm"
)

// EventRepository appends raw engagement events. The table is an
// append-only log; aggregation happens in the feedback pipeline.
type EventRepository struct {
	DB *gorm.DB
}

var _ optimizer.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) SaveEvent(ctx context.Context, event domain.EngagementEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to save engagement event: %w", err)
	}
	return nil
}
