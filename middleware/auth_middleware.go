// middleware/auth_middleware.go
package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/services"
)

// UserFinder loads identities by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AccessTokenParser verifies access tokens.
type AccessTokenParser interface {
	ParseAccess(token string) (*services.AccessClaims, error)
}

type Authenticator struct {
	users  UserFinder
	tokens AccessTokenParser
	logger *zap.Logger
}

func NewAuthenticator(users UserFinder, tokens AccessTokenParser, logger *zap.Logger) *Authenticator {
	return &Authenticator{users: users, tokens: tokens, logger: logger}
}

// CheckAuthentication attaches the caller's identity to the context. A
// federated session loaded earlier in the chain wins; otherwise an access
// token is required.
func (a *Authenticator) CheckAuthentication() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, ok := c.Get(FederatedUserKey).(*models.User); ok && user != nil {
				if authed, _ := c.Get(IsAuthenticatedKey).(bool); authed {
					return a.attach(c, next, user)
				}
			}

			token := AccessToken(c)
			if token == "" {
				return apierror.Unauthorized("Unauthorized request")
			}
			claims, err := a.tokens.ParseAccess(token)
			if err != nil {
				a.logger.Debug("access token rejected", zap.Error(err))
				return &apierror.Error{Kind: apierror.KindUnauthorized, Message: "Invalid access token", Cause: err}
			}

			user, err := a.users.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if apierror.KindOf(err) == apierror.KindNotFound {
					return apierror.Unauthorized("Invalid access token")
				}
				return err
			}
			return a.attach(c, next, user)
		}
	}
}

func (a *Authenticator) attach(c echo.Context, next echo.HandlerFunc, user *models.User) error {
	if user.IsBlocked {
		return apierror.Forbidden("Account is blocked")
	}
	c.Set(UserKey, user)
	return next(c)
}
