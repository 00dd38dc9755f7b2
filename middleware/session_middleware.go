// middleware/session_middleware.go
package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/security"
	"github.com/salus-app/salus_backend/services"
)

// SessionLookup resolves a federated session id to a user id.
type SessionLookup interface {
	Lookup(ctx context.Context, sid string) (string, error)
}

// LoadSession restores the federated identity behind a signed sid cookie.
// Missing, forged or stale cookies leave the request anonymous.
func LoadSession(sessions SessionLookup, users UserFinder, secret string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(IsAuthenticatedKey, false)

			cookie, err := c.Cookie(security.SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			sid, err := security.VerifySignedValue(cookie.Value, secret)
			if err != nil {
				logger.Debug("session cookie rejected", zap.Error(err))
				return next(c)
			}

			ctx := c.Request().Context()
			userID, err := sessions.Lookup(ctx, sid)
			if err != nil {
				if !errors.Is(err, services.ErrNoSession) {
					logger.Warn("session lookup failed", zap.Error(err))
				}
				return next(c)
			}
			user, err := users.FindByID(ctx, userID)
			if err != nil {
				logger.Debug("session user not found", zap.String("userId", userID), zap.Error(err))
				return next(c)
			}

			c.Set(SessionIDKey, sid)
			c.Set(FederatedUserKey, user)
			c.Set(IsAuthenticatedKey, true)
			return next(c)
		}
	}
}
