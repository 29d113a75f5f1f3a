package model

import "time"

// Streak tracks consecutive days with at least one completed task.
// LastActivity is a civil date (YYYY-MM-DD) in the canonical timezone.
type Streak struct {
	UserID        uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CurrentStreak int       `gorm:"not null;default:0" json:"current_streak"`
	BestStreak    int       `gorm:"not null;default:0" json:"best_streak"`
	LastActivity  *string   `gorm:"size:10" json:"last_activity"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}
