package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	Name        string
	Description string
	Emoji       string
	Color       string
	DueDate     *string
}

// ProjectService manages projects.
type ProjectService struct {
	repo *repository.ProjectRepository
}

func NewProjectService(repo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) List(ctx context.Context, includeArchived bool) ([]model.ProjectProgress, error) {
	return s.repo.ListWithProgress(ctx, includeArchived)
}

func (s *ProjectService) Create(ctx context.Context, input ProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, invalid("name is longer than %d characters", maxNameLength)
	}
	due, err := normalizeDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Emoji:       input.Emoji,
		Color:       input.Color,
		DueDate:     due,
	}
	if project.Emoji == "" {
		project.Emoji = model.DefaultProjectEmoji
	}
	if project.Color == "" {
		project.Color = model.DefaultProjectColor
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) SetArchived(ctx context.Context, id uint, archived bool) error {
	return projectErr(s.repo.SetArchived(ctx, id, archived))
}

// Delete removes the project; its tasks are kept without a project.
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	return projectErr(s.repo.Delete(ctx, id))
}

func projectErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProjectNotFound
	}
	return err
}

// normalizeDate validates an optional YYYY-MM-DD value. Empty means unset.
func normalizeDate(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	d, err := calendar.Parse(trimmed)
	if err != nil {
		return nil, invalid("date %q is not YYYY-MM-DD", trimmed)
	}
	out := d.String()
	return &out, nil
}
