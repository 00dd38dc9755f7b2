// middleware/jwt_middleware.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/security"
)

// Context keys set by the middleware chain.
const (
	RoleKey            = "role"
	UserKey            = "user"
	FederatedUserKey   = "federatedUser"
	IsAuthenticatedKey = "isAuthenticated"
	SessionIDKey       = "sessionId"
)

// AccessToken returns the access token from the accessToken cookie, or from
// an "Authorization: Bearer" header.
func AccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(security.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// RefreshToken returns the refresh token cookie value, if any.
func RefreshToken(c echo.Context) string {
	if cookie, err := c.Cookie(security.RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(UserKey).(*models.User)
	return user, ok && user != nil
}

func CurrentRole(c echo.Context) (models.Role, bool) {
	role, ok := c.Get(RoleKey).(models.Role)
	return role, ok && role != ""
}

// SessionID returns the verified federated session id, if one was loaded.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(SessionIDKey).(string)
	return sid
}
