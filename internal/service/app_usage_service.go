package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// AppUsageService records when the pair started using the app.
type AppUsageService struct {
	repo *repository.AppUsageRepository
}

func NewAppUsageService(repo *repository.AppUsageRepository) *AppUsageService {
	return &AppUsageService{repo: repo}
}

// EnsureFirstUse stores now as the first use unless a row already exists,
// and returns the stored row.
func (s *AppUsageService) EnsureFirstUse(ctx context.Context, now time.Time) (*model.AppUsage, error) {
	return s.repo.Ensure(ctx, model.AppUsage{
		InstallID: uuid.NewString(),
		FirstUse:  now.UTC(),
	})
}
