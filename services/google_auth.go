// services/google_auth.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/models"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// KeySetFetcher returns the JWK set used to check ID token signatures.
type KeySetFetcher func(ctx context.Context) (jwk.Set, error)

// GoogleAuthService verifies Google ID tokens issued to our client id.
type GoogleAuthService struct {
	clientID string
	fetch    KeySetFetcher
}

// NewGoogleAuthService fetches Google's certificates lazily and refreshes them
// in the background for as long as ctx lives.
func NewGoogleAuthService(ctx context.Context, clientID string) *GoogleAuthService {
	ar := jwk.NewAutoRefresh(ctx)
	ar.Configure(googleCertsURL, jwk.WithMinRefreshInterval(15*time.Minute))
	return &GoogleAuthService{
		clientID: clientID,
		fetch: func(ctx context.Context) (jwk.Set, error) {
			return ar.Fetch(ctx, googleCertsURL)
		},
	}
}

func NewGoogleAuthServiceWithKeys(clientID string, fetch KeySetFetcher) *GoogleAuthService {
	return &GoogleAuthService{clientID: clientID, fetch: fetch}
}

// VerifyIDToken checks signature, expiry, issuer and audience of idToken and
// returns the profile it describes.
func (s *GoogleAuthService) VerifyIDToken(ctx context.Context, idToken string) (models.ProviderProfile, error) {
	if s.clientID == "" {
		return models.ProviderProfile{}, apierror.Wrap(apierror.KindInternal, "Google login is not configured", errors.New("GOOGLE_CLIENT_ID is empty"))
	}
	keys, err := s.fetch(ctx)
	if err != nil {
		return models.ProviderProfile{}, apierror.Wrap(apierror.KindInternal, "Failed to fetch Google public keys", err)
	}

	token, err := jwt.Parse(idToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, found := keys.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("no google key for kid %q", kid)
		}
		var pubkey interface{}
		if err := key.Raw(&pubkey); err != nil {
			return nil, fmt.Errorf("decode google key: %w", err)
		}
		return pubkey, nil
	})
	if err != nil || !token.Valid {
		return models.ProviderProfile{}, &apierror.Error{Kind: apierror.KindUnauthorized, Message: "Invalid or expired Google token", Cause: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.ProviderProfile{}, apierror.Unauthorized("Invalid Google token claims")
	}
	iss, _ := claims["iss"].(string)
	if !googleIssuers[iss] {
		return models.ProviderProfile{}, apierror.Unauthorized("Google token has an unexpected issuer")
	}
	if !claims.VerifyAudience(s.clientID, true) {
		return models.ProviderProfile{}, apierror.Unauthorized("Google token was issued for another client")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return models.ProviderProfile{}, apierror.Validation("Missing email or sub in token")
	}
	if verified, present := claims["email_verified"]; present && verified != true && verified != "true" {
		return models.ProviderProfile{}, apierror.Forbidden("Google email address is not verified")
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	return models.ProviderProfile{
		Provider: "google",
		ID:       sub,
		Name:     name,
		Email:    email,
		Avatar:   picture,
	}, nil
}
