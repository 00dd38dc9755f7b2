package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/salus-app/salus_backend/controllers"
	"github.com/salus-app/salus_backend/middleware"
)

// RegisterAuthRoutes sets up the passwordless and federated login routes.
func RegisterAuthRoutes(api *echo.Group, ac *controllers.AuthController, authn *middleware.Authenticator) {
	auth := api.Group("/:role/auth")

	auth.POST("/login", ac.Login, middleware.ExtractRole(), middleware.RequireRole(allRoles...))
	auth.POST("/verify", ac.Verify, middleware.ExtractRole())
	// resend is keyed by the session token alone
	auth.POST("/resend", ac.Resend)
	auth.POST("/refresh", ac.Refresh, middleware.ExtractRole())
	auth.POST("/google", ac.GoogleLogin, middleware.ExtractRole(), middleware.RequireRole(allRoles...))
	auth.POST("/logout", ac.Logout,
		middleware.ExtractRole(),
		authn.CheckAuthentication(),
		middleware.RequireRole(allRoles...),
	)
}
