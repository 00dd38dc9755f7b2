package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salus-app/salus_backend/apierror"
)

const testClientID = "salus-web.apps.googleusercontent.com"

type googleFixture struct {
	key *rsa.PrivateKey
	svc *GoogleAuthService
}

func newGoogleFixture(t *testing.T) *googleFixture {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pub, err := jwk.New(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "kid-1"))
	set := jwk.NewSet()
	set.Add(pub)

	return &googleFixture{
		key: priv,
		svc: NewGoogleAuthServiceWithKeys(testClientID, func(context.Context) (jwk.Set, error) { return set, nil }),
	}
}

func (f *googleFixture) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(f.key)
	require.NoError(t, err)
	return s
}

func validGoogleClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "1098765",
		"email":          "asha@example.com",
		"email_verified": true,
		"name":           "Asha",
		"picture":        "https://example.com/a.png",
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}
}

func TestVerifyIDToken(t *testing.T) {
	f := newGoogleFixture(t)
	profile, err := f.svc.VerifyIDToken(context.Background(), f.sign(t, "kid-1", validGoogleClaims()))
	require.NoError(t, err)
	assert.Equal(t, "google", profile.Provider)
	assert.Equal(t, "1098765", profile.ID)
	assert.Equal(t, "asha@example.com", profile.Email)
	assert.Equal(t, "Asha", profile.Name)
}

func TestVerifyIDTokenRejects(t *testing.T) {
	f := newGoogleFixture(t)

	cases := map[string]struct {
		kid    string
		mutate func(jwt.MapClaims)
		kind   apierror.Kind
	}{
		"unknown key":     {kid: "other", mutate: func(jwt.MapClaims) {}, kind: apierror.KindUnauthorized},
		"expired":         {kid: "kid-1", mutate: func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() }, kind: apierror.KindUnauthorized},
		"wrong audience":  {kid: "kid-1", mutate: func(c jwt.MapClaims) { c["aud"] = "someone-else" }, kind: apierror.KindUnauthorized},
		"wrong issuer":    {kid: "kid-1", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example" }, kind: apierror.KindUnauthorized},
		"missing email":   {kid: "kid-1", mutate: func(c jwt.MapClaims) { delete(c, "email") }, kind: apierror.KindValidation},
		"unverified mail": {kid: "kid-1", mutate: func(c jwt.MapClaims) { c["email_verified"] = false }, kind: apierror.KindForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			claims := validGoogleClaims()
			tc.mutate(claims)
			_, err := f.svc.VerifyIDToken(context.Background(), f.sign(t, tc.kid, claims))
			require.Error(t, err)
			assert.Equal(t, tc.kind, apierror.KindOf(err))
		})
	}
}

func TestVerifyIDTokenRejectsHMAC(t *testing.T) {
	f := newGoogleFixture(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validGoogleClaims())
	token.Header["kid"] = "kid-1"
	s, err := token.SignedString([]byte("guess"))
	require.NoError(t, err)

	_, err = f.svc.VerifyIDToken(context.Background(), s)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
}

func TestVerifyIDTokenNeedsClientID(t *testing.T) {
	svc := NewGoogleAuthServiceWithKeys("", nil)
	_, err := svc.VerifyIDToken(context.Background(), "x")
	assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))
}
