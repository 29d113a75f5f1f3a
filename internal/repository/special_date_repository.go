package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"couple-checklist/internal/model"
)

// SpecialDateRepository stores anniversaries and birthdays.
type SpecialDateRepository struct {
	db *gorm.DB
}

func NewSpecialDateRepository(db *gorm.DB) *SpecialDateRepository {
	return &SpecialDateRepository{db: db}
}

// Upsert writes the date for (type, user_id), replacing date and label of
// an existing row.
func (r *SpecialDateRepository) Upsert(ctx context.Context, date *model.SpecialDate) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"date", "label"}),
	}).Create(date).Error
	if err != nil {
		return fmt.Errorf("upsert special date: %w", err)
	}
	return nil
}

func (r *SpecialDateRepository) List(ctx context.Context) ([]model.SpecialDate, error) {
	var dates []model.SpecialDate
	if err := r.db.WithContext(ctx).Order("date ASC").Order("id ASC").Find(&dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}

// Find returns the date of the given type and owner or ErrNotFound.
func (r *SpecialDateRepository) Find(ctx context.Context, kind string, userID uint) (*model.SpecialDate, error) {
	var date model.SpecialDate
	if err := r.db.WithContext(ctx).Where("type = ? AND user_id = ?", kind, userID).First(&date).Error; err != nil {
		return nil, notFound(err)
	}
	return &date, nil
}

func (r *SpecialDateRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.SpecialDate{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete special date: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
