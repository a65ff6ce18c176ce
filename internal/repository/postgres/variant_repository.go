package postgres

import (
	"context"
	"fmt"
	"time"

	"postPilot/business/optimizer"
	"postPilot/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VariantRepository struct {
	DB *gorm.DB
}

var _ optimizer.VariantStore = (*VariantRepository)(nil)

func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{DB: db}
}

// LoadAll returns every variant for a persona (all variants when personaID
// is empty). Counter validation happens here so malformed rows never reach
// the ranking path.
func (r *VariantRepository) LoadAll(ctx context.Context, personaID string) ([]domain.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.Variant{})
	if personaID != "" {
		query = query.Where("persona_id = ?", personaID)
	}

	var variants []domain.Variant
	if err := query.Order("created_at ASC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to query content_variants: %w", err)
	}

	for _, v := range variants {
		if err := v.ValidateCounters(); err != nil {
			return nil, err
		}
	}

	return variants, nil
}

func (r *VariantRepository) Get(ctx context.Context, id string) (*domain.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var v domain.Variant
	err := r.DB.WithContext(ctx).First(&v, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query variant %s: %w", id, err)
	}

	if err := v.ValidateCounters(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Increment applies counter deltas as SQL column math so concurrent
// callers on the same row never lose updates. Unknown ID affects zero
// rows and is not an error.
func (r *VariantRepository) Increment(ctx context.Context, id string, impressionsDelta, successesDelta int64, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if impressionsDelta == 0 && successesDelta == 0 {
		return nil
	}

	res := r.DB.WithContext(ctx).Model(&domain.Variant{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"impressions": gorm.Expr("impressions + ?", impressionsDelta),
			"successes":   gorm.Expr("successes + ?", successesDelta),
			"last_used":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to increment variant %s: %w", id, res.Error)
	}

	return nil
}

// IncrementBatch applies one atomic increment per unique variant inside a
// single transaction: the whole batch lands or none of it does.
func (r *VariantRepository) IncrementBatch(ctx context.Context, deltas []domain.VariantDelta, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(deltas) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deltas {
			if d.ImpressionsDelta == 0 && d.SuccessesDelta == 0 {
				continue
			}
			res := tx.Model(&domain.Variant{}).
				Where("id = ?", d.VariantID).
				Updates(map[string]any{
					"impressions": gorm.Expr("impressions + ?", d.ImpressionsDelta),
					"successes":   gorm.Expr("successes + ?", d.SuccessesDelta),
					"last_used":   now,
				})
			if res.Error != nil {
				return fmt.Errorf("increment variant %s: %w", d.VariantID, res.Error)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply increment batch: %w", err)
	}

	return nil
}

func (r *VariantRepository) Insert(ctx context.Context, variant domain.Variant) (domain.Variant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Variant{}, fmt.Errorf("context error: %w", err)
	}

	if variant.ID == "" {
		variant.ID = uuid.NewString()
	}
	if variant.LastUsed.IsZero() {
		variant.LastUsed = time.Now()
	}

	if err := r.DB.WithContext(ctx).Create(&variant).Error; err != nil {
		return domain.Variant{}, fmt.Errorf("failed to insert variant: %w", err)
	}

	return variant, nil
}

func (r *VariantRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&domain.Variant{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count variants: %w", err)
	}
	return count, nil
}
