// services/user_service.go
package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/utils"
)

// UserStore is what registration and profile reads need from storage.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Register creates an unverified identity for role. Admins are provisioned
// out of band and cannot sign up.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest, role models.Role) (*models.User, error) {
	if role == models.RoleAdmin {
		return nil, apierror.Forbidden("Admin accounts cannot be registered")
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, apierror.Validation("Invalid email", "email: "+err.Error())
	}
	mobile, err := utils.SanitizeMobile(req.MobileNumber)
	if err != nil {
		return nil, apierror.Validation("Invalid mobile number", "mobileNumber: "+err.Error())
	}

	user := &models.User{
		Name:         utils.SanitizeInput(req.Name),
		Email:        email,
		MobileNumber: mobile,
		Address:      utils.SanitizeInput(req.Address),
		Pincode:      req.Pincode,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("userId", user.ID.Hex()), zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}
