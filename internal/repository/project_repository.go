package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"couple-checklist/internal/model"
)

// ProjectRepository manages projects and their progress counters.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// ListWithProgress returns projects newest first with task counters.
func (r *ProjectRepository) ListWithProgress(ctx context.Context, includeArchived bool) ([]model.ProjectProgress, error) {
	q := r.db.WithContext(ctx).Table("projects AS p").
		Select("p.*, COUNT(t.id) AS total_tasks, " +
			"COALESCE(SUM(CASE WHEN t.is_completed = ? THEN 1 ELSE 0 END), 0) AS completed_tasks", true).
		Joins("LEFT JOIN tasks t ON t.project_id = p.id").
		Group("p.id").
		Order("p.created_at DESC").Order("p.id DESC")
	if !includeArchived {
		q = q.Where("p.is_archived = ?", false)
	}

	var projects []model.ProjectProgress
	if err := q.Scan(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProjectRepository) SetArchived(ctx context.Context, id uint, archived bool) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Update("is_archived", archived)
	if res.Error != nil {
		return fmt.Errorf("archive project: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project and detaches its tasks.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
