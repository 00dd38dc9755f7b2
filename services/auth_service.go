// services/auth_service.go
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/security"
	"github.com/salus-app/salus_backend/utils"
)

// IdentityStore is the part of the user repository the auth flows need.
type IdentityStore interface {
	FindByContact(ctx context.Context, contact string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindOrCreateFromProvider(ctx context.Context, profile models.ProviderProfile, create bool) (*models.User, error)
	SaveRefreshToken(ctx context.Context, id primitive.ObjectID, tokenHash string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
}

// OtpSessionStore persists pending OTP sessions.
type OtpSessionStore interface {
	Create(ctx context.Context, contact, code string) (string, error)
	FindByToken(ctx context.Context, token string) (*models.OtpSession, error)
	UpdateCode(ctx context.Context, token, code string) (*models.OtpSession, error)
}

// Notifier delivers a code to a contact.
type Notifier interface {
	SendEmail(ctx context.Context, address, code string) error
	SendSMS(ctx context.Context, number, code string) error
}

// TokenIssuer mints and checks session tokens.
type TokenIssuer interface {
	IssuePair(user *models.User) (TokenPair, error)
	ParseRefresh(token string) (*RefreshClaims, error)
}

// SendLimiter throttles code deliveries per contact.
type SendLimiter interface {
	Allow(ctx context.Context, contact string) error
}

// AuthService runs the passwordless login flow: code issue, verification,
// resend, refresh and logout.
type AuthService struct {
	users    IdentityStore
	sessions OtpSessionStore
	notifier Notifier
	tokens   TokenIssuer
	limiter  SendLimiter
	logger   *zap.Logger

	generate func() (string, error)
	now      func() time.Time
	ttl      time.Duration
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) error { return nil }

func NewAuthService(users IdentityStore, sessions OtpSessionStore, notifier Notifier, tokens TokenIssuer, limiter SendLimiter, logger *zap.Logger) *AuthService {
	if limiter == nil {
		limiter = unlimited{}
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		tokens:   tokens,
		limiter:  limiter,
		logger:   logger,
		generate: func() (string, error) { return utils.GenerateOTP(utils.OTPLength) },
		now:      time.Now,
		ttl:      config.OtpSessionTTL,
	}
}

// AuthenticateRole starts a login for contact under role. The returned token
// identifies the OTP session the client must verify.
func (s *AuthService) AuthenticateRole(ctx context.Context, contact models.ContactInfo, role models.Role) (*models.LoginResponse, error) {
	user, err := s.users.FindByContact(ctx, contact.Value())
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, apierror.RoleMismatch(fmt.Sprintf("%s role not found", role))
	}
	if user.IsBlocked {
		return nil, errBlocked()
	}
	if err := s.limiter.Allow(ctx, contact.Value()); err != nil {
		return nil, err
	}

	code, err := s.generate()
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Failed to generate OTP", err)
	}
	token, err := s.sessions.Create(ctx, contact.Value(), code)
	if err != nil {
		return nil, err
	}

	// The session is kept on delivery failure; the client can resend.
	if err := s.deliver(ctx, contact, code); err != nil {
		return nil, err
	}

	s.logger.Info("otp issued", zap.String("userId", user.ID.Hex()), zap.String("role", string(role)))
	return &models.LoginResponse{User: user, UUIDToken: token}, nil
}

// VerifyRoleByOtp checks code against the session and signs the identity in.
// The session is left in place and stays usable until it expires.
func (s *AuthService) VerifyRoleByOtp(ctx context.Context, token, code string) (*models.TokenResponse, error) {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.ExpiredAt(s.now(), s.ttl) {
		return nil, apierror.SessionExpired()
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(session.OTP)) != 1 {
		return nil, apierror.InvalidCode()
	}

	user, err := s.users.FindByContact(ctx, session.ContactInfo)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, errBlocked()
	}
	return s.signIn(ctx, user)
}

// ResendOtp replaces the code of a live session and delivers it again.
func (s *AuthService) ResendOtp(ctx context.Context, token string) error {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if session.ExpiredAt(s.now(), s.ttl) {
		return apierror.SessionExpired()
	}
	if err := s.limiter.Allow(ctx, session.ContactInfo); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return apierror.Wrap(apierror.KindInternal, "Failed to generate OTP", err)
	}
	updated, err := s.sessions.UpdateCode(ctx, token, code)
	if err != nil {
		return err
	}
	return s.deliver(ctx, models.ContactFromValue(updated.ContactInfo), updated.OTP)
}

// Refresh exchanges a refresh token for a new pair. Each refresh token can be
// used once: the stored reference is replaced on every rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	if refreshToken == "" {
		return nil, apierror.Unauthorized("Refresh token is required")
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, &apierror.Error{Kind: apierror.KindUnauthorized, Message: "Invalid refresh token", Cause: err}
	}
	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if apierror.KindOf(err) == apierror.KindNotFound {
			return nil, apierror.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	if !security.RefreshTokenMatches(refreshToken, user.RefreshToken) {
		return nil, apierror.Unauthorized("Refresh token is expired or used")
	}
	if user.IsBlocked {
		return nil, errBlocked()
	}
	return s.signIn(ctx, user)
}

// FederatedLogin signs in an identity vouched for by an external provider.
// Unknown identities are only created on the USER routes.
func (s *AuthService) FederatedLogin(ctx context.Context, profile models.ProviderProfile, role models.Role) (*models.TokenResponse, error) {
	user, err := s.users.FindOrCreateFromProvider(ctx, profile, role == models.RoleUser)
	if apierror.KindOf(err) == apierror.KindNotFound {
		return nil, apierror.RoleMismatch(fmt.Sprintf("%s role not found", role))
	}
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, apierror.RoleMismatch(fmt.Sprintf("%s role not found", role))
	}
	if user.IsBlocked {
		return nil, errBlocked()
	}
	return s.signIn(ctx, user)
}

// Logout drops the stored refresh-token reference so no refresh succeeds.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	if user == nil {
		return apierror.Unauthorized("Unauthorized request")
	}
	return s.users.ClearRefreshToken(ctx, user.ID)
}

func errBlocked() error { return apierror.Forbidden("Account is blocked") }

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "Failed to generate tokens", err)
	}
	if err := s.users.SaveRefreshToken(ctx, user.ID, security.HashRefreshToken(pair.RefreshToken)); err != nil {
		return nil, err
	}
	user.IsVerify = true

	return &models.TokenResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) deliver(ctx context.Context, contact models.ContactInfo, code string) error {
	var err error
	if contact.IsEmail() {
		err = s.notifier.SendEmail(ctx, contact.Email, code)
	} else {
		err = s.notifier.SendSMS(ctx, contact.MobileNumber, code)
	}
	if err == nil {
		return nil
	}
	s.logger.Error("otp delivery failed", zap.Bool("email", contact.IsEmail()), zap.Error(err))
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apierror.Delivery("OTP delivery was interrupted", err)
	}
	return apierror.Delivery("Failed to send OTP", err)
}
