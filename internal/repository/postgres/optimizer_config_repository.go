package postgres

import (
	"context"
	"fmt"

	"postPilot/business/optimizer"
	"postPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OptimizerConfigRepository struct {
	DB *gorm.DB
}

var _ optimizer.ConfigRepository = (*OptimizerConfigRepository)(nil)

func NewOptimizerConfigRepository(db *gorm.DB) *OptimizerConfigRepository {
	return &OptimizerConfigRepository{DB: db}
}

// GetConfig returns the persona's stored overrides. The bool reports
// whether a row exists; absence is not an error.
func (r *OptimizerConfigRepository) GetConfig(ctx context.Context, personaID string) (domain.OptimizerConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OptimizerConfig{}, false, fmt.Errorf("context error: %w", err)
	}

	var cfg domain.OptimizerConfig
	err := r.DB.WithContext(ctx).First(&cfg, "persona_id = ?", personaID).Error
	if err == gorm.ErrRecordNotFound {
		return domain.OptimizerConfig{}, false, nil
	}
	if err != nil {
		return domain.OptimizerConfig{}, false, fmt.Errorf("failed to query optimizer config for %s: %w", personaID, err)
	}

	return cfg, true, nil
}

func (r *OptimizerConfigRepository) UpsertConfig(ctx context.Context, cfg domain.OptimizerConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "persona_id"}},
			UpdateAll: true,
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("failed to upsert optimizer config for %s: %w", cfg.PersonaID, err)
	}

	return nil
}
