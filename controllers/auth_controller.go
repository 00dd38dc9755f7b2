// controllers/auth_controller.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/middleware"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/security"
	"github.com/salus-app/salus_backend/services"
	"github.com/salus-app/salus_backend/utils"
)

// IDTokenVerifier checks an identity provider's ID token.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (models.ProviderProfile, error)
}

// FederatedSessions opens and closes the sessions behind the sid cookie.
type FederatedSessions interface {
	Enabled() bool
	Open(ctx context.Context, userID string) (string, error)
	Close(ctx context.Context, sid string) error
	MaxAge() time.Duration
}

// AuthController serves the /api/v1/{role}/auth routes.
type AuthController struct {
	auth          *services.AuthService
	google        IDTokenVerifier
	sessions      FederatedSessions
	sessionSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	logger        *zap.Logger
}

type AuthControllerConfig struct {
	SessionSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewAuthController(auth *services.AuthService, google IDTokenVerifier, sessions FederatedSessions, cfg AuthControllerConfig, logger *zap.Logger) *AuthController {
	return &AuthController{
		auth:          auth,
		google:        google,
		sessions:      sessions,
		sessionSecret: cfg.SessionSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		logger:        logger,
	}
}

// Login sends a one-time code to the email or mobile number in the body.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	contact, err := normalizeContact(req.ContactInfo)
	if err != nil {
		return err
	}
	role, _ := middleware.CurrentRole(c)

	resp, err := ac.auth.AuthenticateRole(c.Request().Context(), contact, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, resp, "OTP sent successfully"))
}

// Verify exchanges a valid code for access and refresh tokens.
func (ac *AuthController) Verify(c echo.Context) error {
	var req models.VerifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := ac.auth.VerifyRoleByOtp(c.Request().Context(), req.UUIDToken, req.OTP)
	if err != nil {
		return err
	}
	ac.setTokenCookies(c, resp)
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, resp, "User logged in successfully"))
}

func (ac *AuthController) Resend(c echo.Context) error {
	var req models.ResendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := ac.auth.ResendOtp(c.Request().Context(), req.UUIDToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, nil, "OTP resent successfully"))
}

// Refresh rotates the token pair. The refresh token comes from its cookie or
// the request body.
func (ac *AuthController) Refresh(c echo.Context) error {
	token := middleware.RefreshToken(c)
	if token == "" {
		var req models.RefreshRequest
		if err := c.Bind(&req); err != nil {
			return apierror.Validation("Invalid request body")
		}
		token = req.RefreshToken
	}
	resp, err := ac.auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}
	ac.setTokenCookies(c, resp)
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, resp, "Access token refreshed"))
}

func (ac *AuthController) Logout(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apierror.Unauthorized("Unauthorized request")
	}
	ctx := c.Request().Context()
	if err := ac.auth.Logout(ctx, user); err != nil {
		return err
	}
	if sid := middleware.SessionID(c); sid != "" && ac.sessions != nil {
		if err := ac.sessions.Close(ctx, sid); err != nil {
			ac.logger.Warn("close session", zap.String("userId", user.ID.Hex()), zap.Error(err))
		}
	}

	c.SetCookie(security.ExpiredCookie(security.AccessTokenCookie))
	c.SetCookie(security.ExpiredCookie(security.RefreshTokenCookie))
	c.SetCookie(security.ExpiredCookie(security.SessionCookie))
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, nil, "User logged out"))
}

// GoogleLogin signs in with a Google ID token and opens a federated session.
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	var req models.GoogleLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	profile, err := ac.google.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return err
	}
	role, _ := middleware.CurrentRole(c)

	resp, err := ac.auth.FederatedLogin(ctx, profile, role)
	if err != nil {
		return err
	}

	if ac.sessions != nil && ac.sessions.Enabled() {
		sid, err := ac.sessions.Open(ctx, resp.User.ID.Hex())
		if err != nil {
			ac.logger.Warn("open federated session", zap.Error(err))
		} else {
			c.SetCookie(security.TokenCookie(security.SessionCookie, security.SignValue(sid, ac.sessionSecret), ac.sessions.MaxAge()))
		}
	}
	ac.setTokenCookies(c, resp)
	return c.JSON(http.StatusOK, models.NewResponse(http.StatusOK, resp, "User logged in successfully"))
}

func (ac *AuthController) setTokenCookies(c echo.Context, resp *models.TokenResponse) {
	c.SetCookie(security.TokenCookie(security.AccessTokenCookie, resp.AccessToken, ac.accessTTL))
	c.SetCookie(security.TokenCookie(security.RefreshTokenCookie, resp.RefreshToken, ac.refreshTTL))
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apierror.Validation("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apierror.Validation("Validation failed", utils.ValidationMessages(err)...)
	}
	return nil
}

// normalizeContact requires exactly one of email or mobile number.
func normalizeContact(in models.ContactInfo) (models.ContactInfo, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	switch {
	case in.Email != "" && in.MobileNumber != "":
		return in, apierror.Validation("Provide either email or mobileNumber, not both")
	case in.Email != "":
		email, err := utils.SanitizeEmail(in.Email)
		if err != nil {
			return in, apierror.Validation("Invalid email address")
		}
		return models.ContactInfo{Email: email}, nil
	case in.MobileNumber != "":
		mobile, err := utils.SanitizeMobile(in.MobileNumber)
		if err != nil {
			return in, apierror.Validation("Invalid mobile number format")
		}
		return models.ContactInfo{MobileNumber: mobile}, nil
	default:
		return in, apierror.Validation("Email or mobileNumber is required")
	}
}
