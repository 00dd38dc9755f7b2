package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/controllers"
	"github.com/salus-app/salus_backend/middleware"
	"github.com/salus-app/salus_backend/models"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies carries everything the route table needs.
type Dependencies struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Authenticator *middleware.Authenticator
	Sessions      middleware.SessionLookup
	UserFinder    middleware.UserFinder
	SessionSecret string
	Health        map[string]HealthCheck
	Logger        *zap.Logger
}

var allRoles = models.Roles

// SetupRoutes registers every route under /api/v1 plus the service endpoints.
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, map[string]string{
			"status":  "OK",
			"version": "1.0",
		}, "Salus backend is running"))
	})
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", healthHandler(deps.Health))

	api := e.Group("/api/v1")
	if deps.Sessions != nil {
		api.Use(middleware.LoadSession(deps.Sessions, deps.UserFinder, deps.SessionSecret, deps.Logger))
	}

	RegisterAuthRoutes(api, deps.Auth, deps.Authenticator)
	RegisterUserRoutes(api, deps.Users, deps.Authenticator)
}

func healthHandler(checks map[string]HealthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "connected"
		}
		message := "healthy"
		if status != http.StatusOK {
			message = "degraded"
		}
		return c.JSON(status, models.NewResponse(status, report, message))
	}
}
