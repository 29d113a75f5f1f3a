package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"couple-checklist/internal/model"
)

// nextStreak is the new current_streak given the stored row:
// already credited today keeps it, yesterday extends it, anything else
// restarts at one.
const nextStreak = `CASE
		WHEN streaks.last_activity = @today THEN streaks.current_streak
		WHEN streaks.last_activity = @yesterday THEN streaks.current_streak + 1
		ELSE 1
	END`

// recordActivitySQL folds the read-modify-write of a streak into a single
// upsert so concurrent completions cannot lose or double an increment.
// SET expressions see the pre-update row on both SQLite and Postgres.
var recordActivitySQL = fmt.Sprintf(`
INSERT INTO streaks (user_id, current_streak, best_streak, last_activity, created_at, updated_at)
VALUES (@user, 1, 1, @today, @now, @now)
ON CONFLICT (user_id) DO UPDATE SET
	current_streak = %[1]s,
	best_streak = CASE
		WHEN (%[1]s) > streaks.best_streak THEN (%[1]s)
		ELSE streaks.best_streak
	END,
	last_activity = excluded.last_activity,
	updated_at = excluded.updated_at
RETURNING user_id, current_streak, best_streak, last_activity`, nextStreak)

// StreakRepository persists per-user streak rows.
type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// RecordActivity credits today (YYYY-MM-DD) to the user's streak and
// returns the resulting row.
func (r *StreakRepository) RecordActivity(ctx context.Context, userID uint, today, yesterday string, now time.Time) (*model.Streak, error) {
	var streak model.Streak
	err := r.db.WithContext(ctx).Raw(recordActivitySQL, map[string]interface{}{
		"user":      userID,
		"today":     today,
		"yesterday": yesterday,
		"now":       now.UTC(),
	}).Scan(&streak).Error
	if err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}
	if streak.UserID == 0 {
		return nil, fmt.Errorf("record activity: upsert returned no row")
	}
	return &streak, nil
}

// Find returns the streak row of userID or ErrNotFound.
func (r *StreakRepository) Find(ctx context.Context, userID uint) (*model.Streak, error) {
	var streak model.Streak
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error; err != nil {
		return nil, notFound(err)
	}
	return &streak, nil
}

// ResetIfUnchanged zeroes current_streak only while last_activity still
// holds the value the caller observed, so a concurrent RecordActivity wins.
func (r *StreakRepository) ResetIfUnchanged(ctx context.Context, userID uint, lastActivity string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Streak{}).
		Where("user_id = ? AND last_activity = ? AND current_streak <> 0", userID, lastActivity).
		Update("current_streak", 0)
	if res.Error != nil {
		return false, fmt.Errorf("reset streak: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
