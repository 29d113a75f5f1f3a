package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog/log"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// StreakService keeps per-user daily completion streaks.
type StreakService struct {
	users   *repository.UserRepository
	streaks *repository.StreakRepository
}

func NewStreakService(users *repository.UserRepository, streaks *repository.StreakRepository) *StreakService {
	return &StreakService{users: users, streaks: streaks}
}

// RecordActivity credits today to userID's streak. Calling it again on the
// same day is a no-op.
func (s *StreakService) RecordActivity(ctx context.Context, userID uint, today civil.Date) (*model.Streak, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	streak, err := s.streaks.RecordActivity(ctx, userID, today.String(), today.AddDays(-1).String(), time.Now())
	if err != nil {
		return nil, err
	}
	log.Debug().Uint("user_id", userID).Int("current", streak.CurrentStreak).Int("best", streak.BestStreak).
		Msg("streak updated")
	return streak, nil
}

// GetStreak returns userID's streak as of today. A streak whose last
// activity is older than yesterday is reset to zero on read; the best
// streak is kept. A known user without a row reads as zeros.
func (s *StreakService) GetStreak(ctx context.Context, userID uint, today civil.Date) (*model.Streak, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	streak, err := s.streaks.Find(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Streak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}

	if !lapsed(streak, today) {
		return streak, nil
	}

	reset, err := s.streaks.ResetIfUnchanged(ctx, userID, *streak.LastActivity)
	if err != nil {
		return nil, err
	}
	if reset {
		streak.CurrentStreak = 0
		return streak, nil
	}
	// Someone else moved the row in between; report what is stored now.
	return s.streaks.Find(ctx, userID)
}

// SweepLapsed resets every lapsed streak and returns how many were reset.
func (s *StreakService) SweepLapsed(ctx context.Context, today civil.Date) (int, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var reset int
	for _, user := range users {
		before, err := s.streaks.Find(ctx, user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return reset, err
		}
		if !lapsed(before, today) {
			continue
		}
		ok, err := s.streaks.ResetIfUnchanged(ctx, user.ID, *before.LastActivity)
		if err != nil {
			return reset, err
		}
		if ok {
			reset++
			log.Info().Uint("user_id", user.ID).Int("was", before.CurrentStreak).Msg("streak lapsed")
		}
	}
	return reset, nil
}

func lapsed(streak *model.Streak, today civil.Date) bool {
	if streak.LastActivity == nil || streak.CurrentStreak == 0 {
		return false
	}
	last := *streak.LastActivity
	return last != today.String() && last != today.AddDays(-1).String()
}
