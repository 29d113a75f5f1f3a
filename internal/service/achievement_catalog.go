package service

import "couple-checklist/internal/model"

// DefaultCatalog is the built-in achievement list. Entries are matched by
// code, so new ones can be appended between releases.
func DefaultCatalog() []model.Achievement {
	return []model.Achievement{
		{Code: "first_task", Name: "First step", Description: "Complete your first task", Icon: "🌱", ConditionType: model.ConditionTasksCompleted, ConditionValue: 1},
		{Code: "tasks_10", Name: "Getting things done", Description: "Complete 10 tasks", Icon: "✅", ConditionType: model.ConditionTasksCompleted, ConditionValue: 10},
		{Code: "tasks_50", Name: "Reliable partner", Description: "Complete 50 tasks", Icon: "🏅", ConditionType: model.ConditionTasksCompleted, ConditionValue: 50},
		{Code: "tasks_100", Name: "Centurion", Description: "Complete 100 tasks", Icon: "💯", ConditionType: model.ConditionTasksCompleted, ConditionValue: 100},
		{Code: "streak_3", Name: "Warming up", Description: "Keep a 3 day streak", Icon: "🔥", ConditionType: model.ConditionStreakDays, ConditionValue: 3},
		{Code: "streak_7", Name: "On fire", Description: "Keep a 7 day streak", Icon: "🚀", ConditionType: model.ConditionStreakDays, ConditionValue: 7},
		{Code: "streak_30", Name: "Unstoppable", Description: "Keep a 30 day streak", Icon: "🌋", ConditionType: model.ConditionStreakDays, ConditionValue: 30},
		{Code: "team_day", Name: "Team day", Description: "Both of you complete a task on the same day", Icon: "🤝", ConditionType: model.ConditionTeamDay, ConditionValue: 1},
		{Code: "early_bird", Name: "Early bird", Description: "Complete a task before 8 AM", Icon: "🌅", ConditionType: model.ConditionEarlyBird, ConditionValue: 1},
		{Code: "night_owl", Name: "Night owl", Description: "Complete a task after 10 PM", Icon: "🦉", ConditionType: model.ConditionNightOwl, ConditionValue: 1},
		{Code: "weekend_warrior", Name: "Weekend warrior", Description: "Complete 5 tasks over the weekend", Icon: "🏖️", ConditionType: model.ConditionWeekendTasks, ConditionValue: 5},
		{Code: "cheerleader", Name: "Cheerleader", Description: "React to 10 tasks your partner finished", Icon: "📣", ConditionType: model.ConditionReactionsGiven, ConditionValue: 10},
		{Code: "all_rounder", Name: "All rounder", Description: "Have tasks in 5 different categories", Icon: "🎨", ConditionType: model.ConditionCategoriesUsed, ConditionValue: 5},
		{Code: "monthly_20", Name: "Productive month", Description: "Complete 20 tasks in one month", Icon: "📅", ConditionType: model.ConditionMonthlyTasks, ConditionValue: 20},
		{Code: "mesiversario", Name: "Happy mesiversario", Description: "Use the app on your monthly anniversary", Icon: "💝", ConditionType: model.ConditionMesiversario, ConditionValue: 1},
		{Code: "aniversario", Name: "Happy anniversary", Description: "Use the app on your anniversary", Icon: "💍", ConditionType: model.ConditionAniversario, ConditionValue: 1},
		{Code: "app_3_months", Name: "Habit formed", Description: "Use the app for 3 months", Icon: "🗓️", ConditionType: model.ConditionAppMonths, ConditionValue: 3},
		{Code: "app_12_months", Name: "A year together here", Description: "Use the app for 12 months", Icon: "🎂", ConditionType: model.ConditionAppMonths, ConditionValue: 12},
	}
}
