package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks      *repository.TaskRepository
	categories *CategoryService
	streaks    *StreakService
	dates      *SpecialDateService
	loc        *time.Location
}

func NewReminderService(tasks *repository.TaskRepository, categories *CategoryService, streaks *StreakService, dates *SpecialDateService, loc *time.Location) *ReminderService {
	return &ReminderService{tasks: tasks, categories: categories, streaks: streaks, dates: dates, loc: loc}
}

// DailySummary renders the morning message for user as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	today := calendar.Today(now, s.loc)

	tasks, err := s.tasks.ListPending(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames, err := s.categories.Names(ctx)
	if err != nil {
		return "", err
	}

	var pending, inWindow []model.Task
	for _, task := range tasks {
		if task.IsRecurring {
			if recurringDue(task, today, s.loc) {
				inWindow = append(inWindow, task)
			}
			continue
		}
		if !task.IsCompleted {
			pending = append(pending, task)
		}
	}
	sortByDueDate(pending)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Good morning, %s</b>\n", html.EscapeString(user.Name))
	fmt.Fprintf(&b, "🗓 %s\n", today.String())

	streak, err := s.streaks.GetStreak(ctx, user.ID, today)
	if err != nil {
		return "", err
	}
	if streak.CurrentStreak > 0 {
		fmt.Fprintf(&b, "🔥 Streak: %d days (best %d)\n", streak.CurrentStreak, streak.BestStreak)
	}

	info, err := s.dates.Together(ctx, now)
	if err != nil {
		return "", err
	}
	switch {
	case info == nil:
	case info.IsAnniversary:
		fmt.Fprintf(&b, "💍 Happy anniversary! %d years together\n", info.YearsTogether)
	case info.IsMesiversario:
		fmt.Fprintf(&b, "💝 Happy mesiversario! %d months together\n", info.MonthsTogether)
	}

	b.WriteString("\n🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		b.WriteString("— nothing open\n")
	} else {
		for _, task := range pending {
			b.WriteString(formatTask(task, catNames, today))
		}
	}

	b.WriteString("\n♻️ <b>Recurring tasks</b>\n")
	if len(inWindow) == 0 {
		b.WriteString("— none in their window\n")
	} else {
		for _, task := range inWindow {
			b.WriteString(formatRecurring(task, today, catNames, s.loc))
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// PendingReminder lists open tasks of user, or returns "" when there are
// none.
func (s *ReminderService) PendingReminder(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.tasks.ListPending(ctx, user.ID)
	if err != nil {
		return "", err
	}
	var open []model.Task
	for _, task := range tasks {
		if !task.IsCompleted {
			open = append(open, task)
		}
	}
	if len(open) == 0 {
		return "", nil
	}
	sortByDueDate(open)

	today := calendar.Today(now, s.loc)
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ <b>%d open tasks</b>\n", len(open))
	for _, task := range open {
		b.WriteString(formatTask(task, nil, today))
	}
	return strings.TrimSpace(b.String()), nil
}

// recurringDue reports whether today falls in the task's window around its
// monthly day and it was not completed inside that window yet.
func recurringDue(task model.Task, today civil.Date, loc *time.Location) bool {
	if !task.IsRecurring || task.RecurDay <= 0 {
		return false
	}
	due := dueThisMonth(task, today)
	start := due.AddDays(-task.RecurWindow)
	end := due.AddDays(task.RecurWindow)
	if today.Before(start) || today.After(end) {
		return false
	}

	if task.IsCompleted && task.CompletedAt != nil {
		done := calendar.Today(*task.CompletedAt, loc)
		if !done.Before(start) && !done.After(end) {
			return false
		}
	}
	return true
}

func dueThisMonth(task model.Task, today civil.Date) civil.Date {
	day := task.RecurDay
	if last := calendar.DaysInMonth(today.Year, today.Month); day > last {
		day = last
	}
	return civil.Date{Year: today.Year, Month: today.Month, Day: day}
}

func sortByDueDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].DueDate == nil && tasks[j].DueDate == nil:
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		case tasks[i].DueDate == nil:
			return false
		case tasks[j].DueDate == nil:
			return true
		default:
			return *tasks[i].DueDate < *tasks[j].DueDate
		}
	})
}

func formatTask(task model.Task, catNames map[uint]string, today civil.Date) string {
	var sb strings.Builder

	icon := "🟢"
	var due civil.Date
	hasDue := false
	if task.DueDate != nil {
		if d, err := calendar.Parse(*task.DueDate); err == nil {
			due, hasDue = d, true
		}
	}
	if hasDue {
		switch {
		case today.After(due):
			icon = "⚠️"
		case calendar.DaysBetween(today, due) <= 2:
			icon = "⏳"
		}
	} else if task.Priority == model.PriorityHigh {
		icon = "🔴"
	}

	fmt.Fprintf(&sb, "%s #%d %s", icon, task.ID, html.EscapeString(strings.TrimSpace(task.Title)))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok && strings.TrimSpace(name) != "" {
			fmt.Fprintf(&sb, " <i>(%s)</i>", html.EscapeString(strings.TrimSpace(name)))
		}
	}

	if hasDue {
		if today.After(due) {
			fmt.Fprintf(&sb, "\n   ⏰ due %s, <b>overdue</b>", due)
		} else {
			fmt.Fprintf(&sb, "\n   ⏰ due %s · %d days left", due, calendar.DaysBetween(today, due))
		}
	}

	if task.Description != "" {
		fmt.Fprintf(&sb, "\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description)))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatRecurring(task model.Task, today civil.Date, catNames map[uint]string, loc *time.Location) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "♻️ #%d %s", task.ID, html.EscapeString(strings.TrimSpace(task.Title)))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok && strings.TrimSpace(name) != "" {
			fmt.Fprintf(&sb, " <i>(%s)</i>", html.EscapeString(strings.TrimSpace(name)))
		}
	}

	fmt.Fprintf(&sb, "\n   📆 Due %s (window ±%d days)", dueThisMonth(task, today), task.RecurWindow)
	if task.CompletedAt != nil {
		fmt.Fprintf(&sb, "\n   ✅ Last done %s", calendar.Today(*task.CompletedAt, loc))
	} else {
		sb.WriteString("\n   ✅ Not done yet")
	}

	sb.WriteByte('\n')
	return sb.String()
}
