package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
	"couple-checklist/internal/service"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Users        *service.UserService
	Tasks        *service.TaskService
	Streaks      *service.StreakService
	Achievements *service.AchievementService
	Categories   *service.CategoryService
	Projects     *service.ProjectService
	Dates        *service.SpecialDateService
}

type Handler struct {
	svc Services
	loc *time.Location
	now func() time.Time
}

func NewHandler(svc Services, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc, now: time.Now}
}

type userRequest struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	AvatarEmoji string `json:"avatar_emoji"`
}

type taskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	AssignedTo  uint           `json:"assigned_to"`
	AssignedBy  uint           `json:"assigned_by"`
	DueDate     *string        `json:"due_date"`
	Priority    model.Priority `json:"priority"`
	CategoryID  *uint          `json:"category_id"`
	ProjectID   *uint          `json:"project_id"`
	IsRecurring bool           `json:"is_recurring"`
	RecurDay    int            `json:"recur_day"`
	RecurWindow int            `json:"recur_window"`
}

func (r taskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		AssignedBy:  r.AssignedBy,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		CategoryID:  r.CategoryID,
		ProjectID:   r.ProjectID,
		IsRecurring: r.IsRecurring,
		RecurDay:    r.RecurDay,
		RecurWindow: r.RecurWindow,
	}
}

type reactionRequest struct {
	UserID uint   `json:"user_id"`
	Emoji  string `json:"emoji"`
}

type projectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Color       string  `json:"color"`
	DueDate     *string `json:"due_date"`
}

type projectPatch struct {
	IsArchived *bool `json:"is_archived"`
}

type specialDateRequest struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
	Date   string `json:"date"`
	Label  string `json:"label"`
}

type specialDatesResponse struct {
	Dates    []model.SpecialDate   `json:"dates"`
	Together *service.TogetherInfo `json:"mesiversarioInfo"`
}

// ListUsersHandler handles GET /api/users
func (h *Handler) ListUsersHandler(c echo.Context) error {
	users, err := h.svc.Users.List(c.Request().Context())
	if err != nil {
		return responseFailure(c, "Failed to fetch users", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", users)
}

// UpdateUserHandler handles PUT /api/users
func (h *Handler) UpdateUserHandler(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	user, err := h.svc.Users.Update(c.Request().Context(), req.ID, req.Name, req.AvatarEmoji)
	if err != nil {
		return responseFailure(c, "Failed to update user", err)
	}
	return ResponseSuccess(c, http.StatusOK, "User updated", user)
}

// ListTasksHandler handles GET /api/tasks?userId=&filter=
func (h *Handler) ListTasksHandler(c echo.Context) error {
	userID, err := optionalUint(c.QueryParam("userId"))
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid userId", err)
	}
	scope := repository.TaskScope(c.QueryParam("filter"))

	tasks, err := h.svc.Tasks.List(c.Request().Context(), scope, userID)
	if err != nil {
		return responseFailure(c, "Failed to fetch tasks", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", tasks)
}

// CreateTaskHandler handles POST /api/tasks
func (h *Handler) CreateTaskHandler(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	task, err := h.svc.Tasks.Create(c.Request().Context(), req.input())
	if err != nil {
		return responseFailure(c, "Failed to create task", err)
	}
	return ResponseSuccess(c, http.StatusCreated, "Task created", task)
}

// UpdateTaskHandler handles PUT /api/tasks/:id
func (h *Handler) UpdateTaskHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid task id", err)
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	task, err := h.svc.Tasks.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return responseFailure(c, "Failed to update task", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Task updated", task)
}

// DeleteTaskHandler handles DELETE /api/tasks/:id
func (h *Handler) DeleteTaskHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid task id", err)
	}
	if err := h.svc.Tasks.Delete(c.Request().Context(), id); err != nil {
		return responseFailure(c, "Failed to delete task", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Task deleted", nil)
}

// ToggleTaskHandler handles POST /api/tasks/:id/toggle
func (h *Handler) ToggleTaskHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid task id", err)
	}
	res, err := h.svc.Tasks.ToggleComplete(c.Request().Context(), id, h.now())
	if err != nil {
		return responseFailure(c, "Failed to toggle task", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", res)
}

// ReactHandler handles POST /api/tasks/:id/reaction
func (h *Handler) ReactHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid task id", err)
	}
	var req reactionRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	task, err := h.svc.Tasks.React(c.Request().Context(), id, req.UserID, req.Emoji)
	if err != nil {
		return responseFailure(c, "Failed to save reaction", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Reaction saved", task)
}

// HistoryHandler handles GET /api/history?userId=&limit=&offset=
func (h *Handler) HistoryHandler(c echo.Context) error {
	userID, err := optionalUint(c.QueryParam("userId"))
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid userId", err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	history, err := h.svc.Tasks.History(c.Request().Context(), userID, limit, offset, h.now())
	if err != nil {
		return responseFailure(c, "Failed to fetch history", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", history)
}

// StreakHandler handles GET /api/streaks/:userId
func (h *Handler) StreakHandler(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid userId", err)
	}
	streak, err := h.svc.Streaks.GetStreak(c.Request().Context(), userID, calendar.Today(h.now(), h.loc))
	if err != nil {
		return responseFailure(c, "Failed to fetch streak", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", streak)
}

// ListAchievementsHandler handles GET /api/achievements/:userId
func (h *Handler) ListAchievementsHandler(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid userId", err)
	}
	statuses, err := h.svc.Achievements.List(c.Request().Context(), userID)
	if err != nil {
		return responseFailure(c, "Failed to fetch achievements", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", statuses)
}

// CheckAchievementsHandler handles POST /api/achievements/:userId/check
func (h *Handler) CheckAchievementsHandler(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid userId", err)
	}
	unlocked, err := h.svc.Achievements.Evaluate(c.Request().Context(), userID, h.now())
	if err != nil {
		return responseFailure(c, "Failed to check achievements", err)
	}
	if unlocked == nil {
		unlocked = []model.Achievement{}
	}
	return ResponseSuccess(c, http.StatusOK, "", map[string]interface{}{"newAchievements": unlocked})
}

// ListCategoriesHandler handles GET /api/categories
func (h *Handler) ListCategoriesHandler(c echo.Context) error {
	categories, err := h.svc.Categories.List(c.Request().Context())
	if err != nil {
		return responseFailure(c, "Failed to fetch categories", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", categories)
}

// ListProjectsHandler handles GET /api/projects?includeArchived=
func (h *Handler) ListProjectsHandler(c echo.Context) error {
	includeArchived := c.QueryParam("includeArchived") == "true"
	projects, err := h.svc.Projects.List(c.Request().Context(), includeArchived)
	if err != nil {
		return responseFailure(c, "Failed to fetch projects", err)
	}
	return ResponseSuccess(c, http.StatusOK, "", projects)
}

// CreateProjectHandler handles POST /api/projects
func (h *Handler) CreateProjectHandler(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	project, err := h.svc.Projects.Create(c.Request().Context(), service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Emoji:       req.Emoji,
		Color:       req.Color,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return responseFailure(c, "Failed to create project", err)
	}
	return ResponseSuccess(c, http.StatusCreated, "Project created", project)
}

// PatchProjectHandler handles PATCH /api/projects/:id
func (h *Handler) PatchProjectHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid project id", err)
	}
	var req projectPatch
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if req.IsArchived == nil {
		return ResponseError(c, http.StatusBadRequest, "No fields to update", nil)
	}
	if err := h.svc.Projects.SetArchived(c.Request().Context(), id, *req.IsArchived); err != nil {
		return responseFailure(c, "Failed to update project", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Project updated", nil)
}

// DeleteProjectHandler handles DELETE /api/projects/:id
func (h *Handler) DeleteProjectHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid project id", err)
	}
	if err := h.svc.Projects.Delete(c.Request().Context(), id); err != nil {
		return responseFailure(c, "Failed to delete project", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Project deleted", nil)
}

// ListSpecialDatesHandler handles GET /api/special-dates
func (h *Handler) ListSpecialDatesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	dates, err := h.svc.Dates.List(ctx)
	if err != nil {
		return responseFailure(c, "Failed to fetch special dates", err)
	}
	info, err := h.svc.Dates.Together(ctx, h.now())
	if err != nil {
		return responseFailure(c, "Failed to fetch special dates", err)
	}
	if dates == nil {
		dates = []model.SpecialDate{}
	}
	return ResponseSuccess(c, http.StatusOK, "", specialDatesResponse{Dates: dates, Together: info})
}

// UpsertSpecialDateHandler handles POST /api/special-dates
func (h *Handler) UpsertSpecialDateHandler(c echo.Context) error {
	var req specialDateRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	date, err := h.svc.Dates.Upsert(c.Request().Context(), service.SpecialDateInput{
		Type:   req.Type,
		UserID: req.UserID,
		Date:   req.Date,
		Label:  req.Label,
	})
	if err != nil {
		return responseFailure(c, "Failed to save special date", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Special date saved", date)
}

// DeleteSpecialDateHandler handles DELETE /api/special-dates/:id
func (h *Handler) DeleteSpecialDateHandler(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid special date id", err)
	}
	if err := h.svc.Dates.Delete(c.Request().Context(), id); err != nil {
		return responseFailure(c, "Failed to delete special date", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Special date deleted", nil)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func optionalUint(raw string) (uint, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
