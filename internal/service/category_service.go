package service

import (
	"context"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// DefaultCategories are created on first start.
var DefaultCategories = []model.Category{
	{Name: "Home", Emoji: "🏠"},
	{Name: "Errands", Emoji: "🛒"},
	{Name: "Dates", Emoji: "💑"},
	{Name: "Health", Emoji: "💪"},
	{Name: "Finances", Emoji: "💰"},
	{Name: "Work", Emoji: "💼"},
	{Name: "Pets", Emoji: "🐾"},
	{Name: "Other", Emoji: "📌"},
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Seed creates the default categories that are missing.
func (s *CategoryService) Seed(ctx context.Context) error {
	categories := make([]model.Category, len(DefaultCategories))
	copy(categories, DefaultCategories)
	return s.repo.EnsureCategories(ctx, categories)
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

// Names maps category ids to display labels.
func (s *CategoryService) Names(ctx context.Context) (map[uint]string, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Emoji + " " + c.Name
	}
	return names, nil
}
