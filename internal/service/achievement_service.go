package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// AchievementService evaluates and lists achievements.
type AchievementService struct {
	users        *repository.UserRepository
	achievements *repository.AchievementRepository
	loc          *time.Location
}

func NewAchievementService(users *repository.UserRepository, achievements *repository.AchievementRepository, loc *time.Location) *AchievementService {
	return &AchievementService{users: users, achievements: achievements, loc: loc}
}

// SeedCatalog inserts the built-in catalog entries that are missing.
func (s *AchievementService) SeedCatalog(ctx context.Context) error {
	return s.achievements.EnsureCatalog(ctx, DefaultCatalog())
}

// Evaluate unlocks every achievement userID qualifies for as of now and
// returns the ones this call unlocked, in catalog order.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint, now time.Time) ([]model.Achievement, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	snap, err := s.achievements.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := BuildStats(snap, userID, now, s.loc)

	var candidates []uint
	for _, a := range snap.Catalog {
		if _, done := snap.Unlocked[a.ID]; done {
			continue
		}
		if Qualifies(a, stats) {
			candidates = append(candidates, a.ID)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	inserted, err := s.achievements.Unlock(ctx, userID, candidates, now)
	if err != nil {
		return nil, err
	}

	won := make(map[uint]struct{}, len(inserted))
	for _, id := range inserted {
		won[id] = struct{}{}
	}
	unlocked := make([]model.Achievement, 0, len(inserted))
	for _, a := range snap.Catalog {
		if _, ok := won[a.ID]; ok {
			unlocked = append(unlocked, a)
			log.Info().Uint("user_id", userID).Str("achievement", a.Code).Msg("achievement unlocked")
		}
	}
	return unlocked, nil
}

// List returns the catalog with userID's unlock state.
func (s *AchievementService) List(ctx context.Context, userID uint) ([]model.AchievementStatus, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return s.achievements.Statuses(ctx, userID)
}
