package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

const (
	maxTitleLength    = 255
	maxReactionBytes  = 16
	maxRecurWindow    = 15
	defaultHistoryLen = 20
	maxHistoryLen     = 100
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Title       string
	Description string
	AssignedTo  uint
	AssignedBy  uint
	DueDate     *string
	Priority    model.Priority
	CategoryID  *uint
	ProjectID   *uint
	IsRecurring bool
	RecurDay    int
	RecurWindow int
}

// ToggleResult is the outcome of flipping a task's completion.
type ToggleResult struct {
	Task     *model.Task         `json:"task"`
	Streak   *model.Streak       `json:"streak,omitempty"`
	Unlocked []model.Achievement `json:"newAchievements"`
}

// History is one page of completed tasks plus counters.
type History struct {
	Tasks    []model.Task `json:"tasks"`
	ThisWeek int64        `json:"thisWeek"`
	Total    int64        `json:"total"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks        *repository.TaskRepository
	users        *repository.UserRepository
	categories   *repository.CategoryRepository
	projects     *repository.ProjectRepository
	streaks      *StreakService
	achievements *AchievementService
	notifier     Notifier
	loc          *time.Location
}

func NewTaskService(
	tasks *repository.TaskRepository,
	users *repository.UserRepository,
	categories *repository.CategoryRepository,
	projects *repository.ProjectRepository,
	streaks *StreakService,
	achievements *AchievementService,
	notifier Notifier,
	loc *time.Location,
) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TaskService{
		tasks:        tasks,
		users:        users,
		categories:   categories,
		projects:     projects,
		streaks:      streaks,
		achievements: achievements,
		notifier:     notifier,
		loc:          loc,
	}
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, input.AssignedBy); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  input.AssignedBy,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		CategoryID:  input.CategoryID,
		ProjectID:   input.ProjectID,
		IsRecurring: input.IsRecurring,
		RecurDay:    input.RecurDay,
		RecurWindow: input.RecurWindow,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	if task.AssignedBy != task.AssignedTo {
		s.notify(ctx, task.AssignedTo, fmt.Sprintf("📝 New task from %s: %s", s.userName(ctx, task.AssignedBy), task.Title))
	}
	return task, nil
}

// List returns tasks visible under scope for userID.
func (s *TaskService) List(ctx context.Context, scope repository.TaskScope, userID uint) ([]model.Task, error) {
	if scope == "" {
		scope = repository.ScopeAll
	}
	if !scope.Valid() {
		return nil, invalid("unknown filter %q", scope)
	}
	if scope != repository.ScopeAll && userID == 0 {
		return nil, invalid("userId is required for filter %q", scope)
	}
	return s.tasks.List(ctx, scope, userID)
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	return task, err
}

// Update edits the details of a task. The assigner and completion state
// are not editable.
func (s *TaskService) Update(ctx context.Context, id uint, input TaskInput) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.AssignedTo = input.AssignedTo
	task.DueDate = input.DueDate
	task.Priority = input.Priority
	task.CategoryID = input.CategoryID
	task.ProjectID = input.ProjectID
	task.IsRecurring = input.IsRecurring
	task.RecurDay = input.RecurDay
	task.RecurWindow = input.RecurWindow

	if err := s.tasks.UpdateDetails(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ToggleComplete flips the completion of a task. Completing it credits the
// assignee's streak and evaluates their achievements; failures there are
// logged and do not undo the completion.
func (s *TaskService) ToggleComplete(ctx context.Context, id uint, now time.Time) (*ToggleResult, error) {
	task, err := s.tasks.ToggleCompleted(ctx, id, now)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{Task: task, Unlocked: []model.Achievement{}}
	if !task.IsCompleted {
		return result, nil
	}

	logger := log.With().Uint("task_id", task.ID).Uint("user_id", task.AssignedTo).Logger()

	streak, err := s.streaks.RecordActivity(ctx, task.AssignedTo, calendar.Today(now, s.loc))
	if err != nil {
		logger.Error().Err(err).Msg("record streak activity")
	} else {
		result.Streak = streak
	}

	unlocked, err := s.achievements.Evaluate(ctx, task.AssignedTo, now)
	if err != nil {
		logger.Error().Err(err).Msg("evaluate achievements")
	} else if len(unlocked) > 0 {
		result.Unlocked = unlocked
	}

	if task.AssignedBy != task.AssignedTo {
		s.notify(ctx, task.AssignedBy, fmt.Sprintf("🎉 %s completed: %s", s.userName(ctx, task.AssignedTo), task.Title))
	}
	for _, a := range result.Unlocked {
		s.notify(ctx, task.AssignedTo, fmt.Sprintf("%s Achievement unlocked: %s\n%s", a.Icon, a.Name, a.Description))
	}
	return result, nil
}

// React stores the assigner's reaction on a completed task. Each task
// takes one reaction.
func (s *TaskService) React(ctx context.Context, id, userID uint, emoji string) (*model.Task, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > maxReactionBytes {
		return nil, invalid("reaction must be a single emoji")
	}

	ok, err := s.tasks.SetReaction(ctx, id, userID, emoji)
	if err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		switch {
		case task.AssignedBy != userID:
			return nil, ErrNotAssigner
		case !task.IsCompleted:
			return nil, ErrNotCompleted
		default:
			return nil, ErrAlreadyReacted
		}
	}

	if task.AssignedTo != userID {
		s.notify(ctx, task.AssignedTo, fmt.Sprintf("%s %s reacted to: %s", emoji, s.userName(ctx, userID), task.Title))
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	err := s.tasks.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// History pages through completed tasks of userID, or of both users when
// userID is zero. ThisWeek counts completions since Sunday.
func (s *TaskService) History(ctx context.Context, userID uint, limit, offset int, now time.Time) (*History, error) {
	if limit <= 0 {
		limit = defaultHistoryLen
	}
	if limit > maxHistoryLen {
		limit = maxHistoryLen
	}
	if offset < 0 {
		offset = 0
	}

	tasks, err := s.tasks.ListCompleted(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.tasks.CountCompleted(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	weekStart := calendar.StartOfDay(calendar.StartOfWeek(calendar.Today(now, s.loc), s.loc), s.loc)
	week, err := s.tasks.CountCompleted(ctx, userID, &weekStart)
	if err != nil {
		return nil, err
	}

	if tasks == nil {
		tasks = []model.Task{}
	}
	return &History{Tasks: tasks, ThisWeek: week, Total: total}, nil
}

// validate normalizes input in place.
func (s *TaskService) validate(ctx context.Context, input *TaskInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(input.Title) > maxTitleLength {
		return invalid("title is longer than %d characters", maxTitleLength)
	}

	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.Valid() {
		return invalid("unknown priority %q", input.Priority)
	}

	due, err := normalizeDate(input.DueDate)
	if err != nil {
		return err
	}
	input.DueDate = due

	if input.IsRecurring {
		if input.RecurDay < 1 || input.RecurDay > 31 {
			return invalid("recurring day must be between 1 and 31")
		}
		if input.RecurWindow < 0 || input.RecurWindow > maxRecurWindow {
			return invalid("recurring window must be between 0 and %d days", maxRecurWindow)
		}
	} else {
		input.RecurDay, input.RecurWindow = 0, 0
	}

	if err := s.requireUser(ctx, input.AssignedTo); err != nil {
		return err
	}

	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("unknown category %d", *input.CategoryID)
			}
			return err
		}
	}
	if input.ProjectID != nil {
		exists, err := s.projects.Exists(ctx, *input.ProjectID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProjectNotFound
		}
	}
	return nil
}

func (s *TaskService) requireUser(ctx context.Context, id uint) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (s *TaskService) userName(ctx context.Context, id uint) string {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "Your partner"
	}
	return user.Name
}

func (s *TaskService) notify(ctx context.Context, userID uint, text string) {
	if err := s.notifier.Notify(ctx, userID, text); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("notification failed")
	}
}
