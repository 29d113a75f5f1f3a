package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
	"couple-checklist/internal/service"
	"couple-checklist/internal/testutil"
)

var bogota = time.FixedZone("UTC-5", -5*3600)

type apiFixture struct {
	e        *echo.Echo
	jen, arg model.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.OpenDB(t)
	jen, arg := testutil.SeedPair(t, db)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	streaks := service.NewStreakService(userRepo, repository.NewStreakRepository(db))
	achievements := service.NewAchievementService(userRepo, repository.NewAchievementRepository(db), bogota)
	categories := service.NewCategoryService(categoryRepo)
	require.NoError(t, achievements.SeedCatalog(ctx))
	require.NoError(t, categories.Seed(ctx))

	h := NewHandler(Services{
		Users: service.NewUserService(userRepo),
		Tasks: service.NewTaskService(repository.NewTaskRepository(db), userRepo, categoryRepo, projectRepo,
			streaks, achievements, nil, bogota),
		Streaks:      streaks,
		Achievements: achievements,
		Categories:   categories,
		Projects:     service.NewProjectService(projectRepo),
		Dates:        service.NewSpecialDateService(userRepo, repository.NewSpecialDateRepository(db), bogota),
	}, bogota)
	h.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, bogota) }

	return &apiFixture{e: NewServer(h), jen: jen, arg: arg}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var payload *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = strings.NewReader(string(raw))
	} else {
		payload = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestUsersEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	var users []model.User
	decode(t, env, &users)
	assert.Len(t, users, 2)

	code, env = f.do(t, http.MethodPut, "/api/users", map[string]interface{}{"id": f.jen.ID, "name": "Jeni", "avatar_emoji": "🌸"})
	require.Equal(t, http.StatusOK, code)
	var user model.User
	decode(t, env, &user)
	assert.Equal(t, "Jeni", user.Name)

	code, env = f.do(t, http.MethodPut, "/api/users", map[string]interface{}{"id": f.jen.ID, "name": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	code, _ = f.do(t, http.MethodPut, "/api/users", map[string]interface{}{"id": 99, "name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTaskLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":       "Book dinner",
		"assigned_to": f.jen.ID,
		"assigned_by": f.arg.ID,
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, code)
	var task model.Task
	decode(t, env, &task)
	require.NotZero(t, task.ID)

	code, env = f.do(t, http.MethodGet, fmt.Sprintf("/api/tasks?userId=%d&filter=myTasks", f.jen.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var tasks []model.Task
	decode(t, env, &tasks)
	assert.Len(t, tasks, 1)

	code, env = f.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/toggle", task.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var toggled struct {
		Task            model.Task          `json:"task"`
		Streak          *model.Streak       `json:"streak"`
		NewAchievements []model.Achievement `json:"newAchievements"`
	}
	decode(t, env, &toggled)
	assert.True(t, toggled.Task.IsCompleted)
	require.NotNil(t, toggled.Streak)
	assert.Equal(t, 1, toggled.Streak.CurrentStreak)
	require.NotEmpty(t, toggled.NewAchievements)
	assert.Equal(t, "first_task", toggled.NewAchievements[0].Code)

	code, _ = f.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/reaction", task.ID), map[string]interface{}{"user_id": f.jen.ID, "emoji": "🥰"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/reaction", task.ID), map[string]interface{}{"user_id": f.arg.ID, "emoji": "🥰"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/reaction", task.ID), map[string]interface{}{"user_id": f.arg.ID, "emoji": "😍"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = f.do(t, http.MethodGet, fmt.Sprintf("/api/streaks/%d", f.jen.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var streak model.Streak
	decode(t, env, &streak)
	assert.Equal(t, 1, streak.CurrentStreak)

	code, env = f.do(t, http.MethodGet, fmt.Sprintf("/api/streaks/%d", f.arg.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var fresh model.Streak
	decode(t, env, &fresh)
	assert.Zero(t, fresh.CurrentStreak)
	assert.Nil(t, fresh.LastActivity)

	code, env = f.do(t, http.MethodGet, "/api/streaks/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)

	code, env = f.do(t, http.MethodGet, fmt.Sprintf("/api/history?userId=%d", f.jen.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var history service.History
	decode(t, env, &history)
	assert.EqualValues(t, 1, history.Total)
	assert.EqualValues(t, 1, history.ThisWeek)

	code, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/toggle", task.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTaskValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown filter", http.MethodGet, "/api/tasks?userId=1&filter=everything", nil, http.StatusBadRequest},
		{"bad user id", http.MethodGet, "/api/tasks?userId=abc", nil, http.StatusBadRequest},
		{"empty title", http.MethodPost, "/api/tasks", map[string]interface{}{"title": " ", "assigned_to": 1, "assigned_by": 2}, http.StatusBadRequest},
		{"unknown assignee", http.MethodPost, "/api/tasks", map[string]interface{}{"title": "x", "assigned_to": 42, "assigned_by": 2}, http.StatusNotFound},
		{"bad task id", http.MethodPut, "/api/tasks/abc", map[string]interface{}{"title": "x"}, http.StatusBadRequest},
		{"missing task", http.MethodPut, "/api/tasks/999", map[string]interface{}{"title": "x", "assigned_to": 1}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := f.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, code)
			assert.False(t, env.Success)
		})
	}
}

func TestAchievementsEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, fmt.Sprintf("/api/achievements/%d/check", f.jen.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var checked struct {
		NewAchievements []model.Achievement `json:"newAchievements"`
	}
	decode(t, env, &checked)
	assert.Empty(t, checked.NewAchievements)

	code, env = f.do(t, http.MethodGet, fmt.Sprintf("/api/achievements/%d", f.jen.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var statuses []model.AchievementStatus
	decode(t, env, &statuses)
	assert.Len(t, statuses, len(service.DefaultCatalog()))

	code, _ = f.do(t, http.MethodGet, "/api/achievements/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProjectsEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/projects", map[string]interface{}{"name": "Trip"})
	require.Equal(t, http.StatusCreated, code)
	var project model.Project
	decode(t, env, &project)

	code, _ = f.do(t, http.MethodPatch, fmt.Sprintf("/api/projects/%d", project.ID), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPatch, fmt.Sprintf("/api/projects/%d", project.ID), map[string]interface{}{"is_archived": true})
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(t, http.MethodGet, "/api/projects?includeArchived=true", nil)
	require.Equal(t, http.StatusOK, code)
	var projects []model.ProjectProgress
	decode(t, env, &projects)
	require.Len(t, projects, 1)
	assert.True(t, projects[0].IsArchived)

	code, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = f.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, code)
	var categories []model.Category
	decode(t, env, &categories)
	assert.Len(t, categories, len(service.DefaultCategories))
}

func TestSpecialDatesEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodGet, "/api/special-dates", nil)
	require.Equal(t, http.StatusOK, code)
	var empty specialDatesResponse
	decode(t, env, &empty)
	assert.Empty(t, empty.Dates)
	assert.Nil(t, empty.Together)

	code, _ = f.do(t, http.MethodPost, "/api/special-dates", map[string]interface{}{"type": "anniversary", "date": "not-a-date"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = f.do(t, http.MethodPost, "/api/special-dates", map[string]interface{}{"type": "anniversary", "date": "2024-02-10"})
	require.Equal(t, http.StatusOK, code)
	var saved model.SpecialDate
	decode(t, env, &saved)

	code, env = f.do(t, http.MethodGet, "/api/special-dates", nil)
	require.Equal(t, http.StatusOK, code)
	var listed specialDatesResponse
	decode(t, env, &listed)
	require.Len(t, listed.Dates, 1)
	require.NotNil(t, listed.Together)
	assert.True(t, listed.Together.IsMesiversario)
	assert.Equal(t, 16, listed.Together.MonthsTogether)

	code, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/special-dates/%d", saved.ID), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/special-dates/%d", saved.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("toggle: %w", repository.ErrConflict)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}
