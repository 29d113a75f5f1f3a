package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities high → low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a single item on the shared checklist.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `json:"description"`
	AssignedTo  uint       `gorm:"index;not null" json:"assigned_to"`
	AssignedBy  uint       `gorm:"index;not null" json:"assigned_by"`
	IsCompleted bool       `gorm:"default:false;index" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	DueDate     *string    `gorm:"size:10" json:"due_date"`
	Priority    Priority   `gorm:"size:10;default:'medium'" json:"priority"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	ProjectID   *uint      `gorm:"index" json:"project_id"`
	IsRecurring bool       `gorm:"default:false" json:"is_recurring"`
	RecurDay    int        `json:"recur_day,omitempty"`
	RecurWindow int        `json:"recur_window,omitempty"`
	Reaction    *string    `gorm:"size:16" json:"reaction"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasReaction reports whether the assigner already reacted.
func (t Task) HasReaction() bool {
	return t.Reaction != nil && *t.Reaction != ""
}
