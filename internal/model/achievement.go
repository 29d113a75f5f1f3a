package model

import "time"

// ConditionType selects the unlock predicate of an achievement.
type ConditionType string

const (
	ConditionTasksCompleted ConditionType = "tasks_completed"
	ConditionStreakDays     ConditionType = "streak_days"
	ConditionTeamDay        ConditionType = "team_day"
	ConditionEarlyBird      ConditionType = "early_bird"
	ConditionNightOwl       ConditionType = "night_owl"
	ConditionWeekendTasks   ConditionType = "weekend_tasks"
	ConditionReactionsGiven ConditionType = "reactions_given"
	ConditionCategoriesUsed ConditionType = "categories_used"
	ConditionMonthlyTasks   ConditionType = "monthly_tasks"
	ConditionMesiversario   ConditionType = "mesiversario"
	ConditionAniversario    ConditionType = "aniversario"
	ConditionAppMonths      ConditionType = "app_months"
)

// Achievement is a catalog entry.
type Achievement struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Code           string        `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name           string        `gorm:"size:100;not null" json:"name"`
	Description    string        `json:"description"`
	Icon           string        `gorm:"size:10" json:"icon"`
	ConditionType  ConditionType `gorm:"size:32;not null" json:"condition_type"`
	ConditionValue int           `gorm:"not null;default:0" json:"condition_value"`
}

// UserAchievement records an unlock. One row per (user, achievement).
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt    time.Time `gorm:"not null"`
}

// AchievementStatus is a catalog entry annotated with a user's unlock.
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
}
