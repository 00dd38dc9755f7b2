// services/token_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/salus-app/salus_backend/config"
	"github.com/salus-app/salus_backend/models"
)

const tokenIssuer = "salus"

// AccessClaims are carried by the short-lived access token.
type AccessClaims struct {
	Email        string      `json:"email,omitempty"`
	MobileNumber string      `json:"mobileNumber,omitempty"`
	Name         string      `json:"name,omitempty"`
	Role         models.Role `json:"role"`
	jwt.StandardClaims
}

// RefreshClaims only identify the subject.
type RefreshClaims struct {
	jwt.StandardClaims
}

// TokenPair is what a successful sign-in hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and parses access and refresh tokens (HS256).
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenExpiry,
		refreshTTL:    cfg.RefreshTokenExpiry,
		now:           time.Now,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssuePair mints a fresh access and refresh token for user.
func (s *TokenService) IssuePair(user *models.User) (TokenPair, error) {
	if user == nil || user.ID.IsZero() {
		return TokenPair{}, errors.New("cannot issue tokens without a user id")
	}
	now := s.now()
	subject := user.ID.Hex()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Name:         user.Name,
		Role:         user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.accessTTL).Unix(),
		},
	})
	accessString, err := access.SignedString(s.accessSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.refreshTTL).Unix(),
		},
	})
	refreshString, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessString, RefreshToken: refreshString}, nil
}

// ParseAccess verifies signature and expiry of an access token.
func (s *TokenService) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh verifies signature and expiry of a refresh token.
func (s *TokenService) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("token is invalid")
	}
	return nil
}
