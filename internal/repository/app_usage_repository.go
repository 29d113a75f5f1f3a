package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"couple-checklist/internal/model"
)

// AppUsageRepository guards the single first-use row.
type AppUsageRepository struct {
	db *gorm.DB
}

func NewAppUsageRepository(db *gorm.DB) *AppUsageRepository {
	return &AppUsageRepository{db: db}
}

// Ensure inserts candidate unless the row already exists and returns the
// stored row. Concurrent callers all observe the first writer's values.
func (r *AppUsageRepository) Ensure(ctx context.Context, candidate model.AppUsage) (*model.AppUsage, error) {
	candidate.ID = model.AppUsageID
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("insert first use: %w", err)
	}

	var stored model.AppUsage
	if err := db.First(&stored, model.AppUsageID).Error; err != nil {
		return nil, fmt.Errorf("read first use: %w", notFound(err))
	}
	return &stored, nil
}
