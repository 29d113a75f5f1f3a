package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"couple-checklist/internal/model"
)

// ErrConflict is returned when a conditional update lost a race too often.
var ErrConflict = errors.New("concurrent update")

const toggleAttempts = 3

// TaskScope narrows task listings relative to a user.
type TaskScope string

const (
	ScopeAll             TaskScope = "all"
	ScopeMine            TaskScope = "myTasks"
	ScopeAssignedByOther TaskScope = "assignedByOther"
	ScopeAssignedToOther TaskScope = "assignedToOther"
)

// Valid reports whether s is a known scope.
func (s TaskScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeMine, ScopeAssignedByOther, ScopeAssignedToOther:
		return true
	}
	return false
}

const priorityOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// List returns tasks ordered open first, then by priority and recency.
// userID is ignored for ScopeAll.
func (r *TaskRepository) List(ctx context.Context, scope TaskScope, userID uint) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	switch scope {
	case ScopeMine:
		q = q.Where("assigned_to = ?", userID)
	case ScopeAssignedByOther:
		q = q.Where("assigned_to = ? AND assigned_by <> ?", userID, userID)
	case ScopeAssignedToOther:
		q = q.Where("assigned_by = ? AND assigned_to <> ?", userID, userID)
	}

	var tasks []model.Task
	if err := q.Order("is_completed ASC").Order(priorityOrder).Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPending returns the open tasks assigned to userID, recurring ones
// included regardless of state.
func (r *TaskRepository) ListPending(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("assigned_to = ? AND (is_completed = ? OR is_recurring = ?)", userID, false, true).
		Order("due_date IS NULL, due_date ASC").Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateDetails overwrites the editable fields of a task.
func (r *TaskRepository) UpdateDetails(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", task.ID).
		Select("title", "description", "assigned_to", "due_date", "priority", "category_id", "project_id",
			"is_recurring", "recur_day", "recur_window").
		Updates(task)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleCompleted flips the completion flag. Completing stamps completedAt,
// un-completing clears it. The flip is a compare-and-set on the previous
// flag so two concurrent toggles never both observe the same state.
func (r *TaskRepository) ToggleCompleted(ctx context.Context, id uint, completedAt time.Time) (*model.Task, error) {
	db := r.db.WithContext(ctx)
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		var task model.Task
		if err := db.First(&task, id).Error; err != nil {
			return nil, notFound(err)
		}

		next := !task.IsCompleted
		var stamp *time.Time
		if next {
			utc := completedAt.UTC()
			stamp = &utc
		}

		res := db.Model(&model.Task{}).
			Where("id = ? AND is_completed = ?", id, task.IsCompleted).
			Updates(map[string]interface{}{"is_completed": next, "completed_at": stamp})
		if res.Error != nil {
			return nil, fmt.Errorf("toggle task: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			task.IsCompleted = next
			task.CompletedAt = stamp
			return &task, nil
		}
	}
	return nil, fmt.Errorf("toggle task %d: %w", id, ErrConflict)
}

// SetReaction stores emoji on a completed task assigned by assignerID that
// has no reaction yet. It reports whether a row was updated.
func (r *TaskRepository) SetReaction(ctx context.Context, id, assignerID uint, emoji string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND assigned_by = ? AND is_completed = ? AND (reaction IS NULL OR reaction = '')", id, assignerID, true).
		Update("reaction", emoji)
	if res.Error != nil {
		return false, fmt.Errorf("set reaction: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCompleted pages through completed tasks, newest completion first.
// A zero userID lists both users.
func (r *TaskRepository) ListCompleted(ctx context.Context, userID uint, limit, offset int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.completedScope(ctx, userID).
		Order("completed_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountCompleted counts completions, optionally only those at or after since.
func (r *TaskRepository) CountCompleted(ctx context.Context, userID uint, since *time.Time) (int64, error) {
	q := r.completedScope(ctx, userID)
	if since != nil {
		q = q.Where("completed_at >= ?", since.UTC())
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TaskRepository) completedScope(ctx context.Context, userID uint) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Task{}).Where("is_completed = ?", true)
	if userID != 0 {
		q = q.Where("assigned_to = ?", userID)
	}
	return q
}
