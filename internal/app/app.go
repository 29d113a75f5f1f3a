// Package app wires configuration, storage, services and transports.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"couple-checklist/internal/bot"
	"couple-checklist/internal/calendar"
	"couple-checklist/internal/config"
	"couple-checklist/internal/httpapi"
	"couple-checklist/internal/repository"
	"couple-checklist/internal/service"
)

const (
	sweepTime       = "00:05"
	jobTimeout      = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	Config config.Config
	DB     *gorm.DB
	Echo   *echo.Echo
	Bot    *bot.Bot

	Users        *service.UserService
	Tasks        *service.TaskService
	Streaks      *service.StreakService
	Achievements *service.AchievementService
	Categories   *service.CategoryService
	Projects     *service.ProjectService
	Dates        *service.SpecialDateService
	Reminders    *service.ReminderService
	Usage        *service.AppUsageService
	Scheduler    *service.SchedulerService

	loc *time.Location
	now func() time.Time
}

// New opens the database and builds every service. The Telegram bot is
// created only when a token is configured.
func New(cfg config.Config) (*App, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return NewWithDB(cfg, db)
}

// NewWithDB builds the app on an already opened database.
func NewWithDB(cfg config.Config, db *gorm.DB) (*App, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	a := &App{Config: cfg, DB: db, loc: loc, now: time.Now}
	a.Users = service.NewUserService(userRepo)
	a.Streaks = service.NewStreakService(userRepo, repository.NewStreakRepository(db))
	a.Achievements = service.NewAchievementService(userRepo, repository.NewAchievementRepository(db), loc)
	a.Categories = service.NewCategoryService(categoryRepo)
	a.Projects = service.NewProjectService(projectRepo)
	a.Dates = service.NewSpecialDateService(userRepo, repository.NewSpecialDateRepository(db), loc)
	a.Usage = service.NewAppUsageService(repository.NewAppUsageRepository(db))
	a.Reminders = service.NewReminderService(taskRepo, a.Categories, a.Streaks, a.Dates, loc)
	a.Scheduler = service.NewSchedulerService(loc)

	var notifier service.Notifier = service.NopNotifier{}
	var api *tgbotapi.BotAPI
	if cfg.TelegramEnabled() {
		client, err := bot.NewAPI(cfg.TelegramToken)
		if err != nil {
			return nil, err
		}
		api = client
		notifier = bot.NewNotifier(client, a.Users)
	} else {
		log.Info().Msg("telegram token not set, notifications disabled")
	}

	a.Tasks = service.NewTaskService(taskRepo, userRepo, categoryRepo, projectRepo, a.Streaks, a.Achievements, notifier, loc)

	if api != nil {
		a.Bot = bot.New(api, bot.Services{
			Users:        a.Users,
			Tasks:        a.Tasks,
			Streaks:      a.Streaks,
			Achievements: a.Achievements,
			Dates:        a.Dates,
			Reminders:    a.Reminders,
		}, loc)
	}

	a.Echo = httpapi.NewServer(httpapi.NewHandler(httpapi.Services{
		Users:        a.Users,
		Tasks:        a.Tasks,
		Streaks:      a.Streaks,
		Achievements: a.Achievements,
		Categories:   a.Categories,
		Projects:     a.Projects,
		Dates:        a.Dates,
	}, loc))

	return a, nil
}

// Seed creates the pair, the categories, the achievement catalog and the
// first-use marker. Every step is idempotent.
func (a *App) Seed(ctx context.Context) error {
	if err := a.Users.SeedPair(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := a.Categories.Seed(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := a.Achievements.SeedCatalog(ctx); err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	if _, err := a.Usage.EnsureFirstUse(ctx, a.now()); err != nil {
		return fmt.Errorf("record first use: %w", err)
	}
	return nil
}

// ScheduleJobs registers the nightly streak sweep and, with a bot, the
// daily summary and pending-task reminders.
func (a *App) ScheduleJobs() error {
	if _, err := a.Scheduler.ScheduleDaily(sweepTime, a.job("streak sweep", a.sweepStreaks)); err != nil {
		return fmt.Errorf("schedule streak sweep: %w", err)
	}
	if a.Bot == nil {
		return nil
	}
	if _, err := a.Scheduler.ScheduleDaily(a.Config.DailySummaryTime, a.job("daily summary", a.Bot.SendDailySummaries)); err != nil {
		return fmt.Errorf("schedule daily summary: %w", err)
	}
	if a.Config.ReminderInterval > 0 {
		if _, err := a.Scheduler.ScheduleInterval(a.Config.ReminderInterval, a.job("reminders", a.Bot.SendReminders)); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}
	return nil
}

func (a *App) sweepStreaks(ctx context.Context) error {
	reset, err := a.Streaks.SweepLapsed(ctx, calendar.Today(a.now(), a.loc))
	if err != nil {
		return err
	}
	log.Info().Int("reset", reset).Msg("lapsed streaks reset")
	return nil
}

func (a *App) job(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		}
	}
}

// Run serves HTTP, polls Telegram and runs scheduled jobs until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.ScheduleJobs(); err != nil {
		return err
	}
	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	if a.Bot != nil {
		go func() {
			if err := a.Bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("bot stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.Config.HTTPAddr).Msg("http server listening")
		if err := a.Echo.Start(a.Config.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func (a *App) Now() time.Time {
	return a.now()
}

// Location is the timezone every calendar day is taken in.
func (a *App) Location() *time.Location {
	return a.loc
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
