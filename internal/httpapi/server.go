// Package httpapi exposes the checklist over a JSON API.
package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// NewServer builds an echo instance with middlewares and routes registered.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	RegisterMiddlewares(e)
	RegisterRoutes(e, h)
	return e
}

func RegisterMiddlewares(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
}

func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")

	api.GET("/users", h.ListUsersHandler)
	api.PUT("/users", h.UpdateUserHandler)

	api.GET("/tasks", h.ListTasksHandler)
	api.POST("/tasks", h.CreateTaskHandler)
	api.PUT("/tasks/:id", h.UpdateTaskHandler)
	api.DELETE("/tasks/:id", h.DeleteTaskHandler)
	api.POST("/tasks/:id/toggle", h.ToggleTaskHandler)
	api.POST("/tasks/:id/reaction", h.ReactHandler)

	api.GET("/history", h.HistoryHandler)
	api.GET("/streaks/:userId", h.StreakHandler)

	api.GET("/achievements/:userId", h.ListAchievementsHandler)
	api.POST("/achievements/:userId/check", h.CheckAchievementsHandler)

	api.GET("/categories", h.ListCategoriesHandler)

	api.GET("/projects", h.ListProjectsHandler)
	api.POST("/projects", h.CreateProjectHandler)
	api.PATCH("/projects/:id", h.PatchProjectHandler)
	api.DELETE("/projects/:id", h.DeleteProjectHandler)

	api.GET("/special-dates", h.ListSpecialDatesHandler)
	api.POST("/special-dates", h.UpsertSpecialDateHandler)
	api.DELETE("/special-dates/:id", h.DeleteSpecialDateHandler)
}
