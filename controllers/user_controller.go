// controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/middleware"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/services"
)

// UserController serves registration and the caller's profile.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, _ := middleware.CurrentRole(c)

	user, err := uc.users.Register(c.Request().Context(), req, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.NewResponse(http.StatusCreated, map[string]interface{}{"user": user}, "User registered successfully"))
}

// GetProfile returns the authenticated identity, re-read from storage.
func (uc *UserController) GetProfile(c echo.Context) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return apierror.Unauthorized("Unauthorized request")
	}
	user, err := uc.users.Profile(c.Request().Context(), current.ID.Hex())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, map[string]interface{}{"user": user}, "User profile fetched"))
}
