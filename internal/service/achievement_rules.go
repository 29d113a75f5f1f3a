package service

import "couple-checklist/internal/model"

type predicate func(st Stats, value int) bool

var predicates = map[model.ConditionType]predicate{
	model.ConditionTasksCompleted: func(st Stats, v int) bool { return st.TasksCompleted >= v },
	model.ConditionStreakDays:     func(st Stats, v int) bool { return st.CurrentStreak >= v || st.BestStreak >= v },
	model.ConditionTeamDay:        func(st Stats, _ int) bool { return st.UsersCompletedToday >= 2 },
	model.ConditionEarlyBird:      func(st Stats, _ int) bool { return st.EarlyBird },
	model.ConditionNightOwl:       func(st Stats, _ int) bool { return st.NightOwl },
	model.ConditionWeekendTasks:   func(st Stats, v int) bool { return st.WeekendTasks >= v },
	model.ConditionReactionsGiven: func(st Stats, v int) bool { return st.ReactionsGiven >= v },
	model.ConditionCategoriesUsed: func(st Stats, v int) bool { return st.CategoriesUsed >= v },
	model.ConditionMonthlyTasks:   func(st Stats, v int) bool { return st.MonthlyTasks >= v },
	model.ConditionMesiversario:   func(st Stats, _ int) bool { return st.Mesiversario },
	model.ConditionAniversario:    func(st Stats, _ int) bool { return st.Aniversario },
	model.ConditionAppMonths:      func(st Stats, v int) bool { return st.AppMonths >= v },
}

// Qualifies reports whether st satisfies a's condition. Unknown condition
// types never qualify.
func Qualifies(a model.Achievement, st Stats) bool {
	check, ok := predicates[a.ConditionType]
	if !ok {
		return false
	}
	return check(st, a.ConditionValue)
}
