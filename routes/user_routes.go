package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/salus-app/salus_backend/controllers"
	"github.com/salus-app/salus_backend/middleware"
	"github.com/salus-app/salus_backend/models"
)

func RegisterUserRoutes(api *echo.Group, uc *controllers.UserController, authn *middleware.Authenticator) {
	api.POST("/:role/register", uc.Register,
		middleware.ExtractRole(),
		middleware.RequireRole(models.RoleUser, models.RolePartner),
	)
	api.GET("/:role/profile", uc.GetProfile,
		middleware.ExtractRole(),
		authn.CheckAuthentication(),
		middleware.RequireRole(allRoles...),
	)
}
