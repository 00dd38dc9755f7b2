// middleware/role_middleware.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/models"
)

const apiPrefix = "/api/v1/"

// roleFromPath returns the first segment after /api/v1/.
func roleFromPath(path string) (models.Role, bool) {
	if !strings.HasPrefix(path, apiPrefix) {
		return "", false
	}
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, apiPrefix), "/")
	return models.ParseRole(segment)
}

// ExtractRole reads the role from the URL and stores it on the context.
func ExtractRole() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := roleFromPath(c.Request().URL.Path)
			if !ok {
				return apierror.Validation("Invalid role in request path")
			}
			c.Set(RoleKey, role)
			return next(c)
		}
	}
}

// RequireRole admits requests whose URL role is one of allowed. When an
// identity is attached, its stored role must match the URL role too.
func RequireRole(allowed ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CurrentRole(c)
			if !ok {
				return apierror.Forbidden("Access denied")
			}
			if !roleIn(role, allowed) {
				return apierror.Forbidden("Access denied for role " + string(role))
			}
			if user, ok := CurrentUser(c); ok && user.Role != role {
				return apierror.Forbidden("Access denied for role " + string(role))
			}
			return next(c)
		}
	}
}

func roleIn(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
