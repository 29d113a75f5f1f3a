package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"couple-checklist/internal/model"
)

// TaskFact is the slice of a task the achievement engine looks at.
type TaskFact struct {
	AssignedTo  uint
	AssignedBy  uint
	IsCompleted bool
	CompletedAt *time.Time
	CategoryID  *uint
	Reaction    *string
}

// ActivitySnapshot is everything one evaluation reads, taken inside a
// single read transaction so all counters agree with each other.
type ActivitySnapshot struct {
	Tasks       []TaskFact
	Streak      *model.Streak
	Anniversary *model.SpecialDate
	FirstUse    *time.Time
	Unlocked    map[uint]struct{}
	Catalog     []model.Achievement
}

// AchievementRepository reads the catalog and records unlocks.
type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// EnsureCatalog inserts catalog entries whose code is not present yet.
func (r *AchievementRepository) EnsureCatalog(ctx context.Context, catalog []model.Achievement) error {
	if len(catalog) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&catalog).Error
	if err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	return nil
}

// Snapshot loads the evaluation inputs for userID in one read transaction.
func (r *AchievementRepository) Snapshot(ctx context.Context, userID uint) (*ActivitySnapshot, error) {
	snap := &ActivitySnapshot{Unlocked: make(map[uint]struct{})}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Select("assigned_to", "assigned_by", "is_completed", "completed_at", "category_id", "reaction").
			Find(&snap.Tasks).Error; err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}

		var streak model.Streak
		switch err := tx.Where("user_id = ?", userID).Take(&streak).Error; {
		case err == nil:
			snap.Streak = &streak
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load streak: %w", err)
		}

		var anniversary model.SpecialDate
		switch err := tx.Where("type = ?", model.SpecialDateAnniversary).Order("id ASC").Take(&anniversary).Error; {
		case err == nil:
			snap.Anniversary = &anniversary
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load anniversary: %w", err)
		}

		var usage model.AppUsage
		switch err := tx.Order("id ASC").Take(&usage).Error; {
		case err == nil:
			firstUse := usage.FirstUse
			snap.FirstUse = &firstUse
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load first use: %w", err)
		}

		var unlocked []uint
		if err := tx.Model(&model.UserAchievement{}).Where("user_id = ?", userID).
			Pluck("achievement_id", &unlocked).Error; err != nil {
			return fmt.Errorf("load unlocks: %w", err)
		}
		for _, id := range unlocked {
			snap.Unlocked[id] = struct{}{}
		}

		if err := tx.Order("id ASC").Find(&snap.Catalog).Error; err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return nil
	}, snapshotTxOptions(r.db))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Unlock records achievementIDs for userID in one statement and returns the
// ids this call inserted. Rows that already exist, including ones written by
// a concurrent call, are skipped and not returned.
func (r *AchievementRepository) Unlock(ctx context.Context, userID uint, achievementIDs []uint, at time.Time) ([]uint, error) {
	if len(achievementIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(achievementIDs))
	args := make([]interface{}, 0, len(achievementIDs)*3)
	for _, id := range achievementIDs {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, userID, id, at.UTC())
	}

	query := "INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES " +
		strings.Join(placeholders, ", ") +
		" ON CONFLICT (user_id, achievement_id) DO NOTHING RETURNING achievement_id"

	var inserted []uint
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&inserted).Error; err != nil {
		return nil, fmt.Errorf("unlock achievements: %w", err)
	}
	return inserted, nil
}

// Statuses joins the catalog with userID's unlocks.
func (r *AchievementRepository) Statuses(ctx context.Context, userID uint) ([]model.AchievementStatus, error) {
	var rows []model.AchievementStatus
	err := r.db.WithContext(ctx).Table("achievements AS a").
		Select("a.*, ua.unlocked_at, (ua.id IS NOT NULL) AS unlocked").
		Joins("LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = ?", userID).
		Order("a.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return rows, nil
}

func snapshotTxOptions(db *gorm.DB) *sql.TxOptions {
	if isPostgres(db) {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	// SQLite transactions already read from a single snapshot.
	return nil
}
