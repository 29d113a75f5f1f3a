package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// SpecialDateInput identifies a date by type and owner.
type SpecialDateInput struct {
	Type   string
	UserID uint
	Date   string
	Label  string
}

// TogetherInfo summarizes the relationship timeline around the anniversary.
type TogetherInfo struct {
	AnniversaryDate string `json:"anniversaryDate"`
	DaysTogether    int    `json:"daysTogether"`
	MonthsTogether  int    `json:"monthsTogether"`
	IsMesiversario  bool   `json:"isMesiversario"`
	IsAnniversary   bool   `json:"isAnniversary"`
	YearsTogether   int    `json:"yearsTogether"`
	DaysUntilNext   int    `json:"daysUntilNext"`
}

// SpecialDateService manages anniversaries and birthdays.
type SpecialDateService struct {
	users *repository.UserRepository
	dates *repository.SpecialDateRepository
	loc   *time.Location
}

func NewSpecialDateService(users *repository.UserRepository, dates *repository.SpecialDateRepository, loc *time.Location) *SpecialDateService {
	return &SpecialDateService{users: users, dates: dates, loc: loc}
}

// Upsert stores the date for (type, owner), replacing an existing one.
func (s *SpecialDateService) Upsert(ctx context.Context, input SpecialDateInput) (*model.SpecialDate, error) {
	kind := strings.TrimSpace(input.Type)
	if kind == "" {
		return nil, invalid("type is required")
	}
	d, err := calendar.Parse(strings.TrimSpace(input.Date))
	if err != nil {
		return nil, invalid("date %q is not YYYY-MM-DD", input.Date)
	}
	if input.UserID != model.SharedOwner {
		exists, err := s.users.Exists(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return nil, ErrUserNotFound
		}
	}

	date := &model.SpecialDate{
		Type:   kind,
		UserID: input.UserID,
		Date:   d.String(),
		Label:  strings.TrimSpace(input.Label),
	}
	if err := s.dates.Upsert(ctx, date); err != nil {
		return nil, err
	}
	return s.dates.Find(ctx, kind, input.UserID)
}

func (s *SpecialDateService) List(ctx context.Context) ([]model.SpecialDate, error) {
	return s.dates.List(ctx)
}

func (s *SpecialDateService) Delete(ctx context.Context, id uint) error {
	err := s.dates.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Together reports how long the pair has been together as of now. It
// returns nil when no anniversary is stored.
func (s *SpecialDateService) Together(ctx context.Context, now time.Time) (*TogetherInfo, error) {
	anniversary, err := s.dates.Find(ctx, model.SpecialDateAnniversary, model.SharedOwner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	anniv, err := calendar.Parse(anniversary.Date)
	if err != nil {
		return nil, fmt.Errorf("stored anniversary %q: %w", anniversary.Date, err)
	}
	return together(anniv, calendar.Today(now, s.loc)), nil
}

func together(anniv, today civil.Date) *TogetherInfo {
	info := &TogetherInfo{
		AnniversaryDate: anniv.String(),
		DaysTogether:    calendar.DaysBetween(anniv, today),
		MonthsTogether:  calendar.MonthsBetween(anniv, today),
	}
	info.IsMesiversario = anniv.Day == today.Day && info.MonthsTogether >= 1
	info.IsAnniversary = anniv.Day == today.Day && anniv.Month == today.Month && today.Year > anniv.Year
	if info.IsAnniversary {
		info.YearsTogether = today.Year - anniv.Year
	}

	if info.IsMesiversario {
		return info
	}
	next := calendar.NextMonthlyOccurrence(today, anniv.Day)
	if next == today {
		next = calendar.NextMonthlyOccurrence(today.AddDays(1), anniv.Day)
	}
	info.DaysUntilNext = calendar.DaysBetween(today, next)
	return info
}
