package service

import (
	"time"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/repository"
)

// Stats are the per-user counters achievement predicates look at.
type Stats struct {
	TasksCompleted      int
	ReactionsGiven      int
	CategoriesUsed      int
	MonthlyTasks        int
	WeekendTasks        int
	EarlyBird           bool
	NightOwl            bool
	UsersCompletedToday int
	CurrentStreak       int
	BestStreak          int
	Mesiversario        bool
	Aniversario         bool
	AppMonths           int
}

const (
	earlyBirdBefore = 8
	nightOwlFrom    = 22
	weekendLookback = 7
)

// BuildStats derives the counters for userID from snap. Every date question
// is answered in loc.
func BuildStats(snap *repository.ActivitySnapshot, userID uint, now time.Time, loc *time.Location) Stats {
	var st Stats
	today := calendar.Today(now, loc)
	weekendFrom := calendar.StartOfDay(today.AddDays(-weekendLookback), loc)

	categories := make(map[uint]struct{})
	completedToday := make(map[uint]struct{})

	for _, task := range snap.Tasks {
		if task.AssignedBy == userID && task.AssignedTo != userID && task.Reaction != nil && *task.Reaction != "" {
			st.ReactionsGiven++
		}

		if task.IsCompleted && task.CompletedAt != nil && calendar.Today(*task.CompletedAt, loc) == today {
			completedToday[task.AssignedTo] = struct{}{}
		}

		if task.AssignedTo != userID {
			continue
		}
		if task.CategoryID != nil {
			categories[*task.CategoryID] = struct{}{}
		}
		if !task.IsCompleted {
			continue
		}
		st.TasksCompleted++
		if task.CompletedAt == nil {
			continue
		}

		local := task.CompletedAt.In(loc)
		if local.Year() == today.Year && local.Month() == today.Month {
			st.MonthlyTasks++
		}
		if !local.Before(weekendFrom) && calendar.IsWeekend(local, loc) {
			st.WeekendTasks++
		}
		if local.Hour() < earlyBirdBefore {
			st.EarlyBird = true
		}
		if local.Hour() >= nightOwlFrom {
			st.NightOwl = true
		}
	}

	st.CategoriesUsed = len(categories)
	st.UsersCompletedToday = len(completedToday)

	if snap.Streak != nil {
		st.CurrentStreak = snap.Streak.CurrentStreak
		st.BestStreak = snap.Streak.BestStreak
	}

	if snap.Anniversary != nil {
		if anniv, err := calendar.Parse(snap.Anniversary.Date); err == nil {
			months := calendar.MonthsBetween(anniv, today)
			st.Mesiversario = anniv.Day == today.Day && months >= 1
			st.Aniversario = anniv.Day == today.Day && anniv.Month == today.Month && today.Year > anniv.Year
		}
	}

	if snap.FirstUse != nil {
		st.AppMonths = calendar.MonthsBetween(calendar.Today(*snap.FirstUse, loc), today)
	}

	return st
}
