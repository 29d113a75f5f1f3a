package model

import "time"

const (
	DefaultProjectEmoji = "📁"
	DefaultProjectColor = "#6366f1"
)

// Project bundles related tasks under a shared goal.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `json:"description"`
	Emoji       string    `gorm:"size:10" json:"emoji"`
	Color       string    `gorm:"size:20" json:"color"`
	DueDate     *string   `gorm:"size:10" json:"due_date"`
	IsArchived  bool      `gorm:"default:false" json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectProgress is a project with its task counters.
type ProjectProgress struct {
	Project
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}
