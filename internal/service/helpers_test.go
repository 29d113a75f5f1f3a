package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
	"couple-checklist/internal/service"
	"couple-checklist/internal/testutil"
)

// bogota is the canonical zone without relying on tzdata in tests.
var bogota = time.FixedZone("UTC-5", -5*3600)

type sentMessage struct {
	UserID uint
	Text   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{UserID: userID, Text: text})
	return nil
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fixture struct {
	db           *gorm.DB
	jen, arg     model.User
	notifier     *recordingNotifier
	users        *service.UserService
	streaks      *service.StreakService
	achievements *service.AchievementService
	tasks        *service.TaskService
	categories   *service.CategoryService
	projects     *service.ProjectService
	dates        *service.SpecialDateService
	usage        *service.AppUsageService
	reminders    *service.ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.OpenDB(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	jen, arg := testutil.SeedPair(t, db)

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	f := &fixture{db: db, jen: jen, arg: arg, notifier: &recordingNotifier{}}
	f.users = service.NewUserService(userRepo)
	f.streaks = service.NewStreakService(userRepo, repository.NewStreakRepository(db))
	f.achievements = service.NewAchievementService(userRepo, repository.NewAchievementRepository(db), bogota)
	f.categories = service.NewCategoryService(categoryRepo)
	f.projects = service.NewProjectService(projectRepo)
	f.dates = service.NewSpecialDateService(userRepo, repository.NewSpecialDateRepository(db), bogota)
	f.usage = service.NewAppUsageService(repository.NewAppUsageRepository(db))
	f.tasks = service.NewTaskService(taskRepo, userRepo, categoryRepo, projectRepo, f.streaks, f.achievements, f.notifier, bogota)
	f.reminders = service.NewReminderService(taskRepo, f.categories, f.streaks, f.dates, bogota)

	ctx := context.Background()
	require.NoError(t, f.achievements.SeedCatalog(ctx))
	require.NoError(t, f.categories.Seed(ctx))
	return f
}

// completedTask inserts a task for assignee completed at the given instant.
func (f *fixture) completedTask(t *testing.T, assignee, assigner uint, at time.Time) model.Task {
	t.Helper()
	utc := at.UTC()
	task := model.Task{
		Title:       "done",
		AssignedTo:  assignee,
		AssignedBy:  assigner,
		IsCompleted: true,
		CompletedAt: &utc,
		Priority:    model.PriorityMedium,
	}
	require.NoError(t, f.db.Create(&task).Error)
	return task
}

func codes(achievements []model.Achievement) []string {
	out := make([]string, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, a.Code)
	}
	return out
}

func unlockedCodes(t *testing.T, f *fixture, userID uint) []string {
	t.Helper()
	statuses, err := f.achievements.List(context.Background(), userID)
	require.NoError(t, err)
	var out []string
	for _, s := range statuses {
		if s.Unlocked {
			out = append(out, s.Code)
		}
	}
	return out
}
